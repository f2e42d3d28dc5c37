// Package exports renders finalized trip records into downloadable payloads:
// a document (PDF with a plain-text fallback) and an iCalendar file.
package exports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/samber/lo"

	"backend/planner"
)

// DocumentMethod identifies which rendering path produced the artifact.
type DocumentMethod string

const (
	MethodStyledPDF DocumentMethod = "pdf-styled"
	MethodBasicPDF  DocumentMethod = "pdf-basic"
	MethodText      DocumentMethod = "text"
)

// Document is exactly one downloadable artifact. ContentType always matches
// the method that actually produced Data.
type Document struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"contentType"`
	Method      DocumentMethod `json:"method"`
	Data        []byte         `json:"-"`
}

// The PDF renderers in fallback order. Overridable in tests.
var pdfRenderers = []struct {
	method DocumentMethod
	render func(*planner.TripRecord) ([]byte, error)
}{
	{MethodStyledPDF, renderStyledPDF},
	{MethodBasicPDF, renderBasicPDF},
}

// RenderDocument produces the trip document, walking the renderer chain and
// degrading to plain text when every PDF path fails. It always returns
// exactly one artifact.
func RenderDocument(rec *planner.TripRecord) Document {
	base := fmt.Sprintf("itinerary_%s_%s", strings.ReplaceAll(rec.Request.Destination, " ", "_"), rec.ID)

	for _, r := range pdfRenderers {
		data, err := r.render(rec)
		if err != nil {
			continue
		}
		return Document{
			Filename:    base + ".pdf",
			ContentType: "application/pdf",
			Method:      r.method,
			Data:        data,
		}
	}

	return Document{
		Filename:    base + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Method:      MethodText,
		Data:        []byte(BuildPlainText(rec)),
	}
}

// DocumentAvailable reports whether a PDF renderer works in this build,
// probed once with a minimal record.
func DocumentAvailable() bool {
	probe := &planner.TripRecord{
		ID:         "probe",
		Request:    planner.TripRequest{Destination: "probe", Days: 1, Budget: planner.MinBudget, Language: "English"},
		Selections: map[planner.Category]planner.CategorySelection{},
		Itinerary:  "probe",
		CreatedAt:  time.Now(),
	}
	for _, r := range pdfRenderers {
		if _, err := r.render(probe); err == nil {
			return true
		}
	}
	return false
}

var documentTemplate = template.Must(template.New("itinerary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Travel Itinerary - {{.Destination}}</title>
</head>
<body>
<center><b>Travel Itinerary: {{.Destination}}</b></center>
<center>Duration: {{.Days}} days | Budget: ₹{{.Budget}} INR | Language: {{.Language}}</center>
<center>Generated: {{.Generated}}</center>
<br><br><b>Research Results</b><br>
{{.Research}}
<br><br><b>Your Selections</b><br>
{{range .Selections}}{{.}}<br>
{{end}}{{if .SpecialRequests}}Special Requests: {{.SpecialRequests}}<br>
{{end}}<br><b>Detailed Itinerary</b><br>
{{.Itinerary}}
</body>
</html>`))

type documentData struct {
	Destination     string
	Days            int
	Budget          int
	Language        string
	Generated       string
	Research        template.HTML
	Selections      []string
	SpecialRequests string
	Itinerary       template.HTML
}

func selectionLines(rec *planner.TripRecord) []string {
	return lo.Map(planner.Categories, func(c planner.Category, _ int) string {
		sel := rec.Selections[c]
		return fmt.Sprintf("%s: %s (%s)", c, strings.Join(sel.Choices, ", "), sel.Preference)
	})
}

func breakLines(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// BuildHTML renders the fixed document template for a trip record.
func BuildHTML(rec *planner.TripRecord) (string, error) {
	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, documentData{
		Destination:     rec.Request.Destination,
		Days:            rec.Request.Days,
		Budget:          rec.Request.Budget,
		Language:        rec.Request.Language,
		Generated:       rec.CreatedAt.Format("2006-01-02 15:04"),
		Research:        breakLines(rec.Research),
		Selections:      selectionLines(rec),
		SpecialRequests: rec.SpecialRequests,
		Itinerary:       breakLines(rec.Itinerary),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildPlainText renders the structured text fallback document.
func BuildPlainText(rec *planner.TripRecord) string {
	var b strings.Builder
	b.WriteString("=== TRAVEL ITINERARY ===\n")
	fmt.Fprintf(&b, "Destination: %s\n", rec.Request.Destination)
	fmt.Fprintf(&b, "Duration: %d days\n", rec.Request.Days)
	fmt.Fprintf(&b, "Budget: ₹%d INR\n", rec.Request.Budget)
	fmt.Fprintf(&b, "Language: %s\n", rec.Request.Language)
	fmt.Fprintf(&b, "Generated: %s\n\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	b.WriteString("=== RESEARCH RESULTS ===\n")
	b.WriteString(rec.Research)
	b.WriteString("\n\n=== YOUR SELECTIONS ===\n")
	for _, line := range selectionLines(rec) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if rec.SpecialRequests != "" {
		fmt.Fprintf(&b, "Special Requests: %s\n", rec.SpecialRequests)
	}
	b.WriteString("\n=== DETAILED ITINERARY ===\n")
	b.WriteString(rec.Itinerary)
	b.WriteByte('\n')
	return b.String()
}
