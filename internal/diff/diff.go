// Package diff compares two renderings line by line using sergi/go-diff.
package diff

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies a diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Prefix returns the marker written before a line of this type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a diff.
type Line struct {
	Type    LineType
	Content string
}

// Result is a full line diff.
type Result struct {
	Lines   []Line
	Added   int
	Removed int
}

// Changed reports whether the inputs differed.
func (r *Result) Changed() bool {
	return r.Added > 0 || r.Removed > 0
}

// Lines diffs old and new at line granularity.
func Lines(oldText, newText string) *Result {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	res := &Result{}
	for _, d := range diffs {
		var typ LineType
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = LineAdded
		case diffmatchpatch.DiffDelete:
			typ = LineRemoved
		default:
			typ = LineContext
		}
		for _, line := range splitLines(d.Text) {
			res.Lines = append(res.Lines, Line{Type: typ, Content: line})
			switch typ {
			case LineAdded:
				res.Added++
			case LineRemoved:
				res.Removed++
			}
		}
	}
	return res
}

// splitLines splits text into lines, dropping the empty element a trailing
// newline would produce.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// Write prints the diff, one prefixed line at a time. With color set,
// added and removed lines are colored.
func (r *Result) Write(w io.Writer, color bool) error {
	var sb strings.Builder
	for _, l := range r.Lines {
		text := l.Type.Prefix() + l.Content
		if color {
			switch l.Type {
			case LineAdded:
				text = addedStyle.Render(text)
			case LineRemoved:
				text = removedStyle.Render(text)
			}
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the uncolored diff.
func (r *Result) String() string {
	var sb strings.Builder
	_ = r.Write(&sb, false)
	return sb.String()
}
