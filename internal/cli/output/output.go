// Package output renders tables and listings for the CLI in text,
// markdown, csv or json form.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/leapstack-labs/leaptable/pkg/table"
)

// OutputMode selects the rendering format.
type OutputMode string

// Output modes. ModeAuto renders text on a terminal and markdown otherwise.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeCSV      OutputMode = "csv"
	ModeJSON     OutputMode = "json"
)

// TimeLayout formats time-typed cells in text and markdown output.
const TimeLayout = "2006-01-02 15:04:05.000"

// Mode converts a config value to an OutputMode. Unknown or empty values
// fall back to ModeAuto.
func Mode(s string) OutputMode {
	switch OutputMode(s) {
	case ModeText, ModeMarkdown, ModeCSV, ModeJSON:
		return OutputMode(s)
	}
	return ModeAuto
}

// Renderer writes command output. Tables go to out, diagnostics to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode

	heading lipgloss.Style
	muted   lipgloss.Style
	errTag  lipgloss.Style
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	r := &Renderer{out: out, errOut: errOut, isTTY: isTTY, mode: mode}
	if isTTY {
		r.heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		r.muted = lipgloss.NewStyle().Faint(true)
		r.errTag = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	}
	return r
}

// Mode returns the effective output mode with auto resolved.
func (r *Renderer) Mode() OutputMode {
	if r.mode == ModeAuto || r.mode == "" {
		if r.isTTY {
			return ModeText
		}
		return ModeMarkdown
	}
	return r.mode
}

// styled applies s only on a terminal, so piped output never carries ANSI codes.
func (r *Renderer) styled(s lipgloss.Style, text string) string {
	if !r.isTTY {
		return text
	}
	return s.Render(text)
}

// Heading prints a section title before a table.
func (r *Renderer) Heading(title string) {
	switch r.Mode() {
	case ModeMarkdown:
		_, _ = fmt.Fprintf(r.out, "## %s\n\n", title)
	case ModeText:
		_, _ = fmt.Fprintln(r.out, r.styled(r.heading, title))
	}
}

// Error prints err to the diagnostic writer.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintf(r.errOut, "%s %v\n", r.styled(r.errTag, "Error:"), err)
}

// Info prints a diagnostic line.
func (r *Renderer) Info(format string, args ...any) {
	_, _ = fmt.Fprintln(r.errOut, r.styled(r.muted, fmt.Sprintf(format, args...)))
}

// Table renders a normalized table.
func (r *Renderer) Table(t *table.Table) error {
	if r.Mode() == ModeJSON {
		return r.encode(t)
	}

	w := r.writer(table.Texts(t.Columns))
	for _, row := range t.Rows {
		cells := make(prettytable.Row, len(row))
		for i, v := range row {
			cells[i] = r.formatCell(t.Columns[i], v)
		}
		w.AppendRow(cells)
	}
	return r.render(w, len(t.Rows))
}

// List renders a plain string listing such as the transforms command output.
func (r *Renderer) List(headers []string, rows [][]string) error {
	if r.Mode() == ModeJSON {
		items := make([]map[string]string, len(rows))
		for i, row := range rows {
			item := make(map[string]string, len(headers))
			for j, h := range headers {
				if j < len(row) {
					item[h] = row[j]
				}
			}
			items[i] = item
		}
		return r.encode(items)
	}

	w := r.writer(headers)
	for _, row := range rows {
		cells := make(prettytable.Row, len(row))
		for i, c := range row {
			cells[i] = c
		}
		w.AppendRow(cells)
	}
	return r.render(w, len(rows))
}

func (r *Renderer) writer(headers []string) prettytable.Writer {
	w := prettytable.NewWriter()
	w.SetStyle(prettytable.StyleLight)
	header := make(prettytable.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	w.AppendHeader(header)
	return w
}

func (r *Renderer) render(w prettytable.Writer, rows int) error {
	switch r.Mode() {
	case ModeCSV:
		_, err := fmt.Fprintln(r.out, w.RenderCSV())
		return err
	case ModeMarkdown:
		if _, err := fmt.Fprintln(r.out, w.RenderMarkdown()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(r.out, "\n(%d rows)\n", rows)
		return err
	default:
		if _, err := fmt.Fprintln(r.out, w.Render()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(r.out, r.styled(r.muted, fmt.Sprintf("(%d rows)", rows)))
		return err
	}
}

// formatCell renders one cell. Absent cells are blank; time columns are
// shown as UTC timestamps outside csv.
func (r *Renderer) formatCell(col table.Column, v table.Value) string {
	if col.Type == table.ColumnTypeTime && r.Mode() != ModeCSV {
		if ms, ok := v.Float(); ok {
			return time.UnixMilli(int64(ms)).UTC().Format(TimeLayout)
		}
	}
	return v.String()
}

func (r *Renderer) encode(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
