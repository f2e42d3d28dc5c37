package exports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"backend/planner"
)

// renderStyledPDF writes the HTML document template through gofpdf's basic
// HTML writer. This is the primary rendering method.
func renderStyledPDF(rec *planner.TripRecord) ([]byte, error) {
	htmlDoc, err := BuildHTML(rec)
	if err != nil {
		return nil, err
	}
	body := htmlBody(htmlDoc)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Travel Itinerary - "+rec.Request.Destination), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 11)
	html := pdf.HTMLBasicNew()
	html.Write(5, tr(body))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderBasicPDF is the secondary method: a plain paragraph layout with no
// markup, built directly from the record.
func renderBasicPDF(rec *planner.TripRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Travel Itinerary: "+rec.Request.Destination), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Duration: %d days | Budget: %d INR | Language: %s",
		rec.Request.Days, rec.Request.Budget, rec.Request.Language)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section := func(title, body string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(body), "", "L", false)
		pdf.Ln(2)
	}

	section("Research Results", rec.Research)
	section("Your Selections", strings.Join(selectionLines(rec), "\n"))
	if rec.SpecialRequests != "" {
		section("Special Requests", rec.SpecialRequests)
	}
	section("Detailed Itinerary", rec.Itinerary)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// htmlBody strips the document down to the fragment gofpdf's HTML writer
// understands.
func htmlBody(doc string) string {
	start := strings.Index(doc, "<body>")
	end := strings.Index(doc, "</body>")
	if start == -1 || end == -1 || end < start {
		return doc
	}
	return strings.TrimSpace(doc[start+len("<body>") : end])
}
