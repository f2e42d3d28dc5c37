package exports

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"backend/planner"
)

// EventDuration is the fixed length of each trip-day event.
const EventDuration = 8 * time.Hour

const itineraryExcerptLen = 300

// Calendar serializes one iCalendar payload with exactly one event per trip
// day. Day i starts at start + i days and lasts EventDuration.
func Calendar(rec *planner.TripRecord, start time.Time) (string, error) {
	days := rec.Request.Days
	if days < 1 {
		return "", fmt.Errorf("trip record has invalid day count %d", days)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//trip-planner//EN")

	now := time.Now().UTC()
	for i := 0; i < days; i++ {
		event := cal.AddEvent(fmt.Sprintf("%s-day-%d@trip-planner", rec.ID, i+1))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start.AddDate(0, 0, i))
		event.SetEndAt(start.AddDate(0, 0, i).Add(EventDuration))
		event.SetSummary(fmt.Sprintf("%s Trip - Day %d", rec.Request.Destination, i+1))
		event.SetLocation(rec.Request.Destination)
		event.SetDescription(eventDescription(rec, i))
	}

	return cal.Serialize(), nil
}

func eventDescription(rec *planner.TripRecord, day int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %d of your %s trip\n\n", day+1, rec.Request.Destination)
	fmt.Fprintf(&b, "Budget: ₹%d INR\n\n", rec.Request.Budget)
	b.WriteString("Selected Options:\n")
	for _, line := range selectionLines(rec) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	fmt.Fprintf(&b, "\nItinerary:\n%s", excerpt(rec.Itinerary, itineraryExcerptLen))
	return b.String()
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
