package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"todolist/internal/view"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatICS  = "ics"
)

// Export encodes a rendered view. Items carry both escaped and plain text;
// every format here writes the plain text.
func Export(m view.Model, format string, generated time.Time) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return exportJSON(m)
	case FormatCSV:
		return exportCSV(m)
	case FormatPDF:
		return exportPDF(m, generated)
	case FormatICS:
		return exportICS(m, generated), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

type jsonItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	Category  *string   `json:"category"`
}

func exportJSON(m view.Model) ([]byte, error) {
	out := make([]jsonItem, 0, len(m.Items))
	for _, it := range m.Items {
		ji := jsonItem{ID: it.ID, Text: it.Plain, Completed: it.Completed, CreatedAt: it.CreatedAt}
		if it.Category != "" {
			c := it.Category
			ji.Category = &c
		}
		out = append(out, ji)
	}
	return json.MarshalIndent(out, "", "  ")
}

func exportCSV(m view.Model) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "text", "completed", "created_at", "category"})
	for _, it := range m.Items {
		_ = w.Write([]string{
			it.ID,
			it.Plain,
			strconv.FormatBool(it.Completed),
			it.CreatedAt.Format(time.RFC3339),
			it.Category,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func exportPDF(m view.Model, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "To-Do List")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	filter := "status=" + string(m.Status)
	if m.Time != view.TimeNone {
		filter += " time=" + string(m.Time)
	}
	pdf.Cell(0, 6, fmt.Sprintf("%s  |  %d of %d tasks  |  %s",
		filter, len(m.Items), m.Total, generated.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	for _, it := range m.Items {
		mark := "[ ]"
		if it.Completed {
			mark = "[x]"
		}
		line := mark + " " + it.Plain
		if it.Category != "" {
			line += "  (" + it.Category + ")"
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
