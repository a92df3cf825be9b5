package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Stat is a single headline figure rendered as a card on the document cover.
type Stat struct {
	Label string
	Value string
}

// Section is one titled table of a multi-part document. EmptyNote is printed
// in place of the table when the dataset has no rows.
type Section struct {
	Title     string
	Data      Dataset
	EmptyNote string
}

// Document describes a complete paginated report: cover title, headline stat
// cards, and a sequence of table sections.
type Document struct {
	Title    string
	Subtitle string
	Footer   string
	Stats    []Stat
	Sections []Section
}

// PDFExporter renders datasets and documents into tabular PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	writeTable(pdf, data)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDocument lays out a multi-section report: a banner with title and
// subtitle, a grid of stat cards, then one table per section with automatic
// page breaks and a numbered footer on every page.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 && len(doc.Stats) == 0 {
		return nil, fmt.Errorf("pdf document requires stats or sections")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(120, 120, 120)
		footer := doc.Footer
		if footer == "" {
			footer = doc.Title
		}
		pdf.CellFormat(95, 8, footer, "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(41, 65, 171)
	pdf.Rect(0, 0, 210, 38, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.SetXY(10, 8)
	pdf.CellFormat(0, 12, doc.Title, "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.SetX(10)
		pdf.CellFormat(0, 8, doc.Subtitle, "", 1, "L", false, 0, "")
	}
	pdf.SetY(46)

	if len(doc.Stats) > 0 {
		writeStatCards(pdf, doc.Stats)
		pdf.Ln(6)
	}

	for _, section := range doc.Sections {
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}
		writeSectionHeader(pdf, section.Title)
		if len(section.Data.Rows) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(128, 128, 128)
			note := section.EmptyNote
			if note == "" {
				note = "No data available."
			}
			pdf.CellFormat(0, 8, note, "", 1, "L", false, 0, "")
			pdf.Ln(4)
			continue
		}
		writeTable(pdf, section.Data)
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeStatCards(pdf *gofpdf.Fpdf, stats []Stat) {
	const (
		columns     = 2
		cardWidth   = 92.5
		cardHeight  = 22.0
		cardSpacing = 5.0
	)
	startX := 10.0
	for i := 0; i < len(stats); i += columns {
		y := pdf.GetY()
		row := stats[i:]
		if len(row) > columns {
			row = row[:columns]
		}
		for j, stat := range row {
			x := startX + float64(j)*(cardWidth+cardSpacing)
			pdf.SetFillColor(240, 249, 255)
			pdf.RoundedRect(x, y, cardWidth, cardHeight, 2.5, "1234", "F")
			pdf.SetTextColor(7, 89, 133)
			pdf.SetFont("Arial", "B", 9)
			pdf.SetXY(x+4, y+4)
			pdf.CellFormat(cardWidth-8, 5, stat.Label, "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "B", 14)
			pdf.SetXY(x+4, y+11)
			pdf.CellFormat(cardWidth-8, 8, stat.Value, "", 0, "L", false, 0, "")
		}
		pdf.SetY(y + cardHeight + cardSpacing)
	}
}

func writeSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(41, 65, 171)
	pdf.CellFormat(0, 9, strings.ToUpper(title), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(41, 65, 171)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)
}

func writeTable(pdf *gofpdf.Fpdf, data Dataset) {
	colWidth := 190.0 / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(220, 230, 242)
	pdf.SetTextColor(0, 51, 102)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range data.Rows {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
