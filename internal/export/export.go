// Package export renders the task collection as json, csv or pdf.
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

	"taskflow/internal/service"
)

// Formats lists the supported format names.
var Formats = []string{"json", "csv", "pdf"}

// Exporter renders a snapshot of tasks.
type Exporter struct {
	now func() time.Time
}

// New creates an Exporter.
func New() *Exporter { return &Exporter{now: time.Now} }

// NewWithClock creates an Exporter with a fixed clock for report headers.
func NewWithClock(now func() time.Time) *Exporter { return &Exporter{now: now} }

// Export renders tasks in the named format.
func (e *Exporter) Export(tasks []service.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		if tasks == nil {
			tasks = []service.Task{}
		}
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "title", "completed", "created_at"})
		for _, t := range tasks {
			_ = w.Write([]string{t.ID, t.Title, strconv.FormatBool(t.Completed), t.CreatedAt.UTC().Format(time.RFC3339)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		return e.pdf(tasks)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func (e *Exporter) pdf(tasks []service.Task) ([]byte, error) {
	var st service.Stats
	for _, t := range tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("TaskFlow tasks", true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "TaskFlow Task Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+e.now().UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(40, 6, fmt.Sprintf("Total %d, active %d, completed %d (%d%%)",
		st.Total, st.Active, st.Completed, st.Percentage()))
	pdf.Ln(10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 10)
	for i, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%3d. %s %s  (%s)", i+1, mark, tr(t.Title), t.CreatedAt.UTC().Format("2006-01-02"))
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
