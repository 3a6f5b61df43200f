// Package output holds small helpers for human-readable CLI output: counts,
// truncation and styled tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Palette colors used by styled output.
var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorSubtext = lipgloss.Color("#a6adc8")
	colorBorder  = lipgloss.Color("#585b70")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorYellow  = lipgloss.Color("#f9e2af")
	colorBlue    = lipgloss.Color("#89b4fa")
	colorRed     = lipgloss.Color("#f38ba8")
	colorOverlay = lipgloss.Color("#6c7086")
)

// UseColor reports whether w is a terminal that accepts color.
func UseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}

// Truncate shortens s to at most maxWidth terminal columns, adding "…" when
// something was cut. Wide runes count as two columns.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// FirstLine returns s up to its first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountStr returns "N item(s)" string
func CountStr(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}

// StyledTable renders aligned columns, with a bold header and dim
// separator when writing to a color terminal.
type StyledTable struct {
	writer   io.Writer
	headers  []string
	rows     [][]string
	widths   []int
	useColor bool
	footer   string
}

// NewStyledTable creates a table writing to w.
func NewStyledTable(w io.Writer, headers ...string) *StyledTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &StyledTable{
		writer:   w,
		headers:  headers,
		widths:   widths,
		useColor: UseColor(w),
	}
}

// AddRow adds a row to the styled table.
func (t *StyledTable) AddRow(cols ...string) *StyledTable {
	for i, c := range cols {
		w := lipgloss.Width(c)
		if i < len(t.widths) && w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cols)
	return t
}

// WithFooter adds a footer message below the table.
func (t *StyledTable) WithFooter(footer string) *StyledTable {
	t.footer = footer
	return t
}

// RowCount returns the number of data rows.
func (t *StyledTable) RowCount() int {
	return len(t.rows)
}

// Render writes the table.
func (t *StyledTable) Render() {
	if len(t.headers) == 0 {
		return
	}

	headerStyle := lipgloss.NewStyle()
	sepStyle := lipgloss.NewStyle()
	if t.useColor {
		headerStyle = headerStyle.Foreground(colorText).Bold(true)
		sepStyle = sepStyle.Foreground(colorBorder)
	}

	pad := func(s string, w int) string {
		if gap := w - lipgloss.Width(s); gap > 0 {
			return s + strings.Repeat(" ", gap)
		}
		return s
	}

	var parts []string
	for i, h := range t.headers {
		cell := pad(h, t.widths[i])
		if t.useColor {
			cell = headerStyle.Render(cell)
		}
		parts = append(parts, cell)
	}
	fmt.Fprintf(t.writer, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))

	parts = parts[:0]
	for _, w := range t.widths {
		sep := strings.Repeat("─", w)
		if t.useColor {
			sep = sepStyle.Render(sep)
		}
		parts = append(parts, sep)
	}
	fmt.Fprintf(t.writer, "  %s\n", strings.Join(parts, "  "))

	for _, row := range t.rows {
		parts = parts[:0]
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts = append(parts, pad(cell, t.widths[i]))
		}
		fmt.Fprintf(t.writer, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	if t.footer != "" {
		fmt.Fprintln(t.writer)
		if t.useColor {
			fmt.Fprintln(t.writer, lipgloss.NewStyle().Foreground(colorSubtext).Render(t.footer))
		} else {
			fmt.Fprintln(t.writer, t.footer)
		}
	}
}

// StatusBadge colors a phase status for terminal output.
func StatusBadge(status string) string {
	var color lipgloss.Color
	switch strings.ToLower(status) {
	case "done", "completed", "ok":
		color = colorGreen
	case "running", "pending", "waiting":
		color = colorYellow
	case "planning", "executing":
		color = colorBlue
	case "error", "failed":
		color = colorRed
	default:
		color = colorOverlay
	}
	return lipgloss.NewStyle().Foreground(color).Render(status)
}
