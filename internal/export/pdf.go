package export

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/paperscout/research-search-service/internal/domain"
)

// PDFFilename is the fixed name used for PDF downloads.
const PDFFilename = "research-results.pdf"

// pdfColumn fixes the layout of one table column in millimeters on a
// landscape A4 page.
type pdfColumn struct {
	header string
	width  float64
	value  func(domain.ResearchItem) string
}

var pdfColumns = []pdfColumn{
	{"Title", 100, func(it domain.ResearchItem) string { return it.Title }},
	{"Authors", 70, func(it domain.ResearchItem) string { return strings.Join(it.Authors, ", ") }},
	{"Journal", 60, func(it domain.ResearchItem) string { return it.Journal }},
	{"Year", 15, func(it domain.ResearchItem) string { return it.Year }},
	{"DOI", 32, func(it domain.ResearchItem) string { return it.DOI }},
}

// WritePDF renders items as a single table in a landscape A4 document
// and writes the PDF bytes to w.
func WritePDF(w io.Writer, title string, items []domain.ResearchItem) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writePDFHeader(pdf)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for i, item := range items {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			writePDFHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		fill := i%2 == 1
		for _, col := range pdfColumns {
			text := truncateToWidth(pdf, col.value(item), col.width-2)
			pdf.CellFormat(col.width, 7, text, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func writePDFHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(60, 60, 60)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// truncateToWidth trims text with an ellipsis so it fits in a cell of
// the given width.
func truncateToWidth(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 {
		text = text[:len(text)-1]
		if pdf.GetStringWidth(text+"...") <= width {
			return text + "..."
		}
	}
	return text
}
