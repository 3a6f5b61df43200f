// Package preview renders structured contexts for the terminal.
package preview

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
	"github.com/Dicklesworthstone/tracerender/internal/tui/terminal"
)

// logger is resolved per call so a default handler installed after
// package init (for --verbose) is honored.
func logger() *slog.Logger {
	return slog.Default().With("component", "preview")
}

// Options control how a preview is produced.
type Options struct {
	// Style is a glamour style name or "auto".
	Style string
	// Width is the wrap width; 0 uses the terminal width.
	Width int
	// Plain skips glamour and styling and only word-wraps the Markdown.
	Plain bool
}

// Previewer turns a context into terminal text.
type Previewer struct {
	renderer *render.Renderer
	caps     terminal.Capabilities
	opts     Options
}

// New creates a previewer. A nil renderer uses the default options.
func New(r *render.Renderer, caps terminal.Capabilities, opts Options) *Previewer {
	if r == nil {
		r = render.New(render.DefaultOptions())
	}
	return &Previewer{renderer: r, caps: caps, opts: opts}
}

// Width returns the effective wrap width.
func (p *Previewer) Width() int {
	return p.caps.WrapWidth(p.opts.Width)
}

// Style returns the glamour style that will be used.
func (p *Previewer) Style() string {
	if p.opts.Plain {
		return ""
	}
	return p.caps.GlamourStyle(p.opts.Style)
}

// Render returns the preview text for sc.
func (p *Previewer) Render(sc *trace.StructuredContext) (string, error) {
	md := p.renderer.Markdown(sc)
	width := p.Width()

	if p.opts.Plain {
		var sb strings.Builder
		sb.WriteString(p.header(sc, width))
		sb.WriteString("\n\n")
		sb.WriteString(wordwrap.String(md, width))
		return sb.String(), nil
	}

	style := p.Style()
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating %q renderer: %w", style, err)
	}
	body, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	logger().Debug("rendered preview", "style", style, "width", width, "bytes", len(body))

	return p.header(sc, width) + "\n" + body, nil
}

func (p *Previewer) header(sc *trace.StructuredContext, width int) string {
	goal := "untitled trace"
	if sc != nil && sc.Req().CoreGoal != "" {
		goal = output.FirstLine(sc.Req().CoreGoal)
	}
	phases := 0
	if sc != nil {
		phases = len(sc.Phases)
	}
	text := output.Truncate(fmt.Sprintf("%s · %s", goal, output.CountStr(phases, "phase", "phases")), width)

	if p.opts.Plain || !p.caps.TTY {
		return text
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#89b4fa")).
		Render(text)
}
