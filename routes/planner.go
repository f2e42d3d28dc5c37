// Package routes binds the trip-planner HTTP API. Handlers follow the
// PocketBase request-event style: stage failures surface as JSON error
// payloads and never crash the session, so every stage stays re-triggerable.
package routes

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"backend/ai"
	"backend/geo"
	"backend/planner"
)

const sessionTTL = 2 * time.Hour

// PlannerAPI carries the shared session store across handlers. Model and
// search clients are rebuilt per request from the environment so credential
// changes apply without a restart.
type PlannerAPI struct {
	store *planner.Store
}

// Register binds every planner route.
func Register(se *core.ServeEvent) {
	api := &PlannerAPI{store: planner.NewStore(sessionTTL)}

	g := se.Router.Group("/api/planner")
	g.GET("/capabilities", api.capabilities)
	g.GET("/categories", api.categories)
	g.POST("/trips", api.createTrip)
	g.GET("/trips/{id}", api.getTrip)
	g.POST("/trips/{id}/research", api.research)
	g.POST("/trips/{id}/preferences/{category}", api.recommend)
	g.POST("/trips/{id}/preferences/{category}/selection", api.selectOptions)
	g.POST("/trips/{id}/itinerary", api.synthesize)
	g.GET("/trips/{id}/history", api.history)
	g.GET("/trips/{id}/map", api.mapView)
	g.POST("/trips/{id}/exports/document", api.exportDocument)
	g.POST("/trips/{id}/exports/calendar", api.exportCalendar)
	g.POST("/trips/{id}/assistant", api.assistant)
}

// requireModelCredentials gates every model/search-dependent operation:
// a missing credential is reported once, before any call is issued.
func requireModelCredentials(e *core.RequestEvent) (string, bool) {
	token := ai.ModelToken()
	if token == "" {
		_ = e.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "GITHUB_TOKEN is not configured on the server",
		})
		return "", false
	}
	if ai.SearchKey() == "" {
		_ = e.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "SERPAPI_API_KEY is not configured on the server",
		})
		return "", false
	}
	return token, true
}

func newPlanner(token string) *planner.Planner {
	client := ai.NewClient(token)
	search := ai.NewSearchClient(ai.SearchKey())
	return &planner.Planner{
		Completer:  client,
		Researcher: ai.NewResearchAgent(client, search.Search),
	}
}

// session resolves the {id} path parameter; a miss is reported and (nil,
// false) returned.
func (api *PlannerAPI) session(e *core.RequestEvent) (*planner.Session, bool) {
	id := e.Request.PathValue("id")
	s, ok := api.store.Get(id)
	if !ok {
		_ = e.JSON(http.StatusNotFound, map[string]string{
			"error": "planning session not found or expired",
		})
		return nil, false
	}
	return s, true
}

func (api *PlannerAPI) categories(e *core.RequestEvent) error {
	menus := make([]planner.CategorySpec, 0, len(planner.Categories))
	for _, c := range planner.Categories {
		spec, _ := planner.Spec(c)
		menus = append(menus, spec)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"categories": menus,
		"languages":  planner.SupportedLanguages(),
	})
}

func (api *PlannerAPI) createTrip(e *core.RequestEvent) error {
	var req planner.TripRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	s := planner.NewSession(req)
	api.store.Put(s)
	e.App.Logger().Info("planning session created", "sessionId", s.ID, "destination", req.Destination)
	return e.JSON(http.StatusCreated, s.Snapshot())
}

func (api *PlannerAPI) getTrip(e *core.RequestEvent) error {
	s, ok := api.session(e)
	if !ok {
		return nil
	}
	return e.JSON(http.StatusOK, s.Snapshot())
}

func (api *PlannerAPI) research(e *core.RequestEvent) error {
	token, ok := requireModelCredentials(e)
	if !ok {
		return nil
	}
	s, ok := api.session(e)
	if !ok {
		return nil
	}

	if err := newPlanner(token).Research(e.Request.Context(), s); err != nil {
		if !planner.IsStageFailure(err) {
			return e.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		e.App.Logger().Error("research stage failed", "error", err, "sessionId", s.ID)
		return e.JSON(http.StatusBadGateway, map[string]string{
			"error": "destination research failed: " + err.Error(),
		})
	}
	return e.JSON(http.StatusOK, s.Snapshot())
}

type preferenceRequest struct {
	Preference string `json:"preference"`
}

func (api *PlannerAPI) recommend(e *core.RequestEvent) error {
	token, ok := requireModelCredentials(e)
	if !ok {
		return nil
	}
	s, ok := api.session(e)
	if !ok {
		return nil
	}
	category, ok := planner.ParseCategory(e.Request.PathValue("category"))
	if !ok {
		return e.JSON(http.StatusNotFound, map[string]string{"error": "unknown preference category"})
	}

	var req preferenceRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sel, err := newPlanner(token).Recommend(e.Request.Context(), s, category, req.Preference)
	if err != nil {
		status := http.StatusBadRequest
		if planner.IsStageFailure(err) {
			status = http.StatusBadGateway
			e.App.Logger().Error("recommendation call failed", "error", err, "sessionId", s.ID, "category", category)
		}
		return e.JSON(status, map[string]string{"error": err.Error()})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"category":  category,
		"selection": sel,
		"choices":   planner.ChoiceMenu(category),
	})
}

type selectionRequest struct {
	Choices []string `json:"choices"`
}

func (api *PlannerAPI) selectOptions(e *core.RequestEvent) error {
	s, ok := api.session(e)
	if !ok {
		return nil
	}
	category, ok := planner.ParseCategory(e.Request.PathValue("category"))
	if !ok {
		return e.JSON(http.StatusNotFound, map[string]string{"error": "unknown preference category"})
	}

	var req selectionRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sel, err := (&planner.Planner{}).Select(s, category, req.Choices)
	if err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return e.JSON(http.StatusOK, map[string]any{
		"category":  category,
		"selection": sel,
	})
}

type synthesisRequest struct {
	SpecialRequests string `json:"specialRequests"`
}

func (api *PlannerAPI) synthesize(e *core.RequestEvent) error {
	token, ok := requireModelCredentials(e)
	if !ok {
		return nil
	}
	s, ok := api.session(e)
	if !ok {
		return nil
	}

	var req synthesisRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	rec, err := newPlanner(token).Synthesize(e.Request.Context(), s, req.SpecialRequests)
	if err != nil {
		status := http.StatusBadRequest
		if planner.IsStageFailure(err) {
			status = http.StatusBadGateway
			e.App.Logger().Error("synthesis stage failed", "error", err, "sessionId", s.ID)
		}
		return e.JSON(status, map[string]string{"error": err.Error()})
	}

	e.App.Logger().Info("itinerary synthesized", "sessionId", s.ID, "tripId", rec.ID)
	return e.JSON(http.StatusOK, rec)
}

func (api *PlannerAPI) history(e *core.RequestEvent) error {
	s, ok := api.session(e)
	if !ok {
		return nil
	}
	return e.JSON(http.StatusOK, map[string]any{
		"trips": s.Records(),
	})
}

type mapPayload struct {
	Available   bool    `json:"available"`
	Destination string  `json:"destination"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Timezone    string  `json:"timezone,omitempty"`
	Note        string  `json:"note,omitempty"`
}

func (api *PlannerAPI) mapView(e *core.RequestEvent) error {
	s, ok := api.session(e)
	if !ok {
		return nil
	}

	// Lookup degrades internally: no token means no model fallback, and the
	// default point still renders.
	var fallback ai.Completer
	if token := ai.ModelToken(); token != "" {
		fallback = ai.NewClient(token)
	}
	pt := geo.Locate(e.Request.Context(), s.Request.Destination, fallback)

	payload := mapPayload{
		Available:   geo.MapAvailable(),
		Destination: s.Request.Destination,
		Lat:         pt.Lat,
		Lng:         pt.Lng,
		Timezone:    geo.Timezone(pt),
	}
	if !payload.Available {
		payload.Note = "Interactive map is unavailable; use the coordinates to look up the destination manually."
	}
	return e.JSON(http.StatusOK, payload)
}
