package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"backend/ai"
	"backend/planner"
)

type assistantRequest struct {
	Messages []ai.Message `json:"messages"`
}

type assistantResponse struct {
	Message ai.Message `json:"message"`
}

// sessionContext is the JSON snapshot handed to the assistant so its answers
// stay grounded in the actual session data.
type sessionContext struct {
	Request     planner.TripRequest                            `json:"request"`
	State       planner.State                                  `json:"state"`
	Research    string                                         `json:"research,omitempty"`
	Selections  map[planner.Category]planner.CategorySelection `json:"selections,omitempty"`
	Itinerary   string                                         `json:"itinerary,omitempty"`
	Trips       int                                            `json:"trips"`
	GeneratedAt string                                         `json:"generatedAt"`
}

const assistantHistoryLimit = 20

// assistant answers free-form questions about the current planning session.
func (api *PlannerAPI) assistant(e *core.RequestEvent) error {
	token, ok := requireModelCredentials(e)
	if !ok {
		return nil
	}
	s, ok := api.session(e)
	if !ok {
		return nil
	}

	var req assistantRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return e.JSON(http.StatusBadRequest, map[string]string{"error": "at least one message is required"})
	}

	contextPrompt, err := buildSessionContext(s)
	if err != nil {
		e.App.Logger().Error("assistant context build failed", "error", err, "sessionId", s.ID)
		return e.JSON(http.StatusInternalServerError, map[string]string{
			"error": "unable to load the latest session context",
		})
	}

	reply, err := ai.NewClient(token).Converse(
		e.Request.Context(),
		[]string{planner.AssistantSystemPrompt, contextPrompt},
		truncateConversation(req.Messages, assistantHistoryLimit),
	)
	if err != nil {
		e.App.Logger().Error("assistant call failed", "error", err, "sessionId", s.ID)
		return e.JSON(http.StatusBadGateway, map[string]string{
			"error": fmt.Sprintf("assistant request failed: %s", err.Error()),
		})
	}

	return e.JSON(http.StatusOK, assistantResponse{
		Message: ai.Message{Role: "assistant", Content: reply},
	})
}

func buildSessionContext(s *planner.Session) (string, error) {
	snap := s.Snapshot()
	ctx := sessionContext{
		Request:     snap.Request,
		State:       snap.State,
		Research:    snap.Research,
		Selections:  snap.Selections,
		Trips:       snap.Trips,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if rec, ok := s.LatestRecord(); ok {
		ctx.Itinerary = rec.Itinerary
	}

	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Latest session context:\n%s", string(data)), nil
}

func truncateConversation(messages []ai.Message, limit int) []ai.Message {
	if len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}
