// Package export renders result sets into downloadable files.
package export

import (
	"io"
	"strings"

	"github.com/paperscout/research-search-service/internal/domain"
)

// CSVFilename is the fixed name used for CSV downloads.
const CSVFilename = "research-results.csv"

var csvHeader = []string{"Title", "Authors", "Journal", "Year", "DOI"}

// WriteCSV writes items as CSV with a header row. Every field is
// quoted, embedded quotes are doubled, and rows end with CRLF so the
// file opens cleanly in spreadsheet tools regardless of cell content.
func WriteCSV(w io.Writer, items []domain.ResearchItem) error {
	if err := writeCSVRow(w, csvHeader); err != nil {
		return err
	}
	for _, item := range items {
		row := []string{
			item.Title,
			strings.Join(item.Authors, ", "),
			item.Journal,
			item.Year,
			item.DOI,
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}
