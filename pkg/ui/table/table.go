// Package table renders lists of tools and diagrams as terminal or
// Markdown tables.
package table

import (
	"fmt"
	"os"
	"strings"
	"time"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	truncate "github.com/muesli/reflow/truncate"
	wordwrap "github.com/muesli/reflow/wordwrap"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is implemented by data sources rendered as a table
type TableData interface {
	// Header returns the column labels
	Header() []string

	// Len returns the number of rows
	Len() int

	// Row returns the cells of row i, or nil to skip the row
	Row(i int) []any
}

// Bold marks a cell which is highlighted
type Bold struct{ Value any }

// Size is a number of bytes
type Size int64

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle()
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

const (
	empty    = "-"
	ellipsis = "…"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table for the terminal. The table is narrowed to the
// terminal width when it would not fit.
func Render(data TableData) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range data.Len() {
		row := data.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = format(v, false)
		}
		t.Row(cells...)
	}

	result := t.Render()
	if w := Width(); w > 0 && lipgloss.Width(result) > w {
		t.Width(w)
		result = t.Render()
	}
	return result
}

// RenderMarkdown renders the table as Markdown
func RenderMarkdown(data TableData) string {
	header := data.Header()
	if len(header) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("| " + strings.Join(header, " | ") + " |\n|")
	buf.WriteString(strings.Repeat("---|", len(header)))
	for i := range data.Len() {
		row := data.Row(i)
		if row == nil {
			continue
		}
		buf.WriteString("\n|")
		for j := range header {
			cell := empty
			if j < len(row) {
				cell = strings.ReplaceAll(format(row[j], true), "|", `\|`)
			}
			buf.WriteString(" " + cell + " |")
		}
	}
	return buf.String()
}

// Width returns the width of the terminal on stdout, or zero
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 0
}

// Truncate collapses newlines and shortens s to a display width
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), ellipsis)
}

// Wrap wraps s at a display width
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s Size) String() string {
	const unit = 1024
	if s < unit {
		return fmt.Sprintf("%d B", int64(s))
	}
	div, exp := int64(unit), 0
	for n := int64(s) / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(s)/float64(div), "KMGTPE"[exp])
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// format converts a cell value to text. Zero values render as a dash.
func format(v any, markdown bool) string {
	switch val := v.(type) {
	case nil:
		return empty
	case Bold:
		inner := format(val.Value, markdown)
		switch {
		case inner == empty:
			return empty
		case markdown:
			return "**" + inner + "**"
		default:
			return boldStyle.Render(inner)
		}
	case string:
		if val == "" {
			return empty
		}
		return val
	case time.Time:
		if val.IsZero() {
			return empty
		}
		return val.Format("2006-01-02 15:04")
	case int, int64, uint:
		if fmt.Sprint(val) == "0" {
			return empty
		}
		return fmt.Sprint(val)
	}
	if s := fmt.Sprint(v); s != "" {
		return s
	}
	return empty
}
