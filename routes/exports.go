package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"backend/exports"
	"backend/planner"
)

// latestRecord fetches the newest TripRecord for an export; exports are only
// meaningful after at least one successful synthesis.
func (api *PlannerAPI) latestRecord(e *core.RequestEvent) (*planner.TripRecord, bool) {
	s, ok := api.session(e)
	if !ok {
		return nil, false
	}
	rec, ok := s.LatestRecord()
	if !ok {
		_ = e.JSON(http.StatusConflict, map[string]string{
			"error": "no itinerary has been synthesized for this session yet",
		})
		return nil, false
	}
	return rec, true
}

// exportDocument streams exactly one artifact per invocation. The rendering
// method that actually succeeded is reported via the X-Export-Method header
// and mirrored by the content type.
func (api *PlannerAPI) exportDocument(e *core.RequestEvent) error {
	rec, ok := api.latestRecord(e)
	if !ok {
		return nil
	}

	doc := exports.RenderDocument(rec)
	if doc.Method == exports.MethodText {
		e.App.Logger().Warn("pdf rendering unavailable, falling back to text", "sessionId", e.Request.PathValue("id"), "tripId", rec.ID)
	}

	e.Response.Header().Set("X-Export-Method", string(doc.Method))
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return e.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

// exportCalendar streams one iCalendar payload with an 8-hour event per trip
// day, anchored at today.
func (api *PlannerAPI) exportCalendar(e *core.RequestEvent) error {
	rec, ok := api.latestRecord(e)
	if !ok {
		return nil
	}

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(9 * time.Hour)
	payload, err := exports.Calendar(rec, start)
	if err != nil {
		e.App.Logger().Error("calendar export failed", "error", err, "tripId", rec.ID)
		return e.JSON(http.StatusInternalServerError, map[string]string{
			"error": "calendar export failed: " + err.Error(),
		})
	}

	filename := fmt.Sprintf("trip_%s_%s.ics", strings.ReplaceAll(rec.Request.Destination, " ", "_"), rec.ID)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return e.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(payload))
}
