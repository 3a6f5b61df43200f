// Package render turns a structured context into an HTML fragment for
// embedding in a host page, and into Markdown for terminal previews.
//
// Rendering is a fixed-order walk over the trace schema: the request block,
// then the phases block (phases and their rounds), then the final summary.
// Each block is rendered on its own and the results are joined, so each can
// be tested in isolation. All free text is HTML-escaped.
package render

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

// DefaultSummaryLimit is the number of characters of a phase summary shown
// before the ellipsis.
const DefaultSummaryLimit = 80

// DefaultEllipsis is appended to every phase summary.
const DefaultEllipsis = "..."

var logger = slog.Default().With("component", "render")

// Options configures the renderer.
type Options struct {
	// SummaryLimit is how many characters of a phase summary are kept.
	SummaryLimit int

	// Ellipsis follows the kept part of a phase summary, whether or not
	// anything was cut.
	Ellipsis string
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		SummaryLimit: DefaultSummaryLimit,
		Ellipsis:     DefaultEllipsis,
	}
}

// Renderer renders structured contexts. It holds no mutable state and is
// safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a renderer, filling zero options with defaults.
func New(opts Options) *Renderer {
	if opts.SummaryLimit <= 0 {
		opts.SummaryLimit = DefaultSummaryLimit
	}
	if opts.Ellipsis == "" {
		opts.Ellipsis = DefaultEllipsis
	}
	return &Renderer{opts: opts}
}

// Options returns the renderer's effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

var defaultRenderer = New(DefaultOptions())

// Render renders sc with the default options.
func Render(sc *trace.StructuredContext) string {
	return defaultRenderer.Render(sc)
}

// Escape makes text safe to embed in HTML, escaping & < > " and '.
func Escape(s string) string {
	return template.HTMLEscapeString(s)
}

// Render renders the whole context. A nil context renders like an empty one.
func (r *Renderer) Render(sc *trace.StructuredContext) string {
	if sc == nil {
		sc = &trace.StructuredContext{}
	}

	blocks := []string{
		r.RenderRequest(sc.Req()),
		r.RenderPhases(sc.Phases),
		r.RenderFinalSummary(sc.Summary, len(sc.Phases)),
	}

	var sb strings.Builder
	sb.WriteString(`<div class="structured-context">`)
	for _, b := range blocks {
		sb.WriteString(b)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// RenderRequest renders the Level 0 request frame. The frame is always
// present; the core goal, requirements and constraints sections are each
// left out when empty.
func (r *Renderer) RenderRequest(req trace.Request) string {
	return execute("request", requestView{
		CoreGoal:     req.CoreGoal,
		Requirements: req.Requirements,
		Constraints:  req.Constraints,
	})
}

// RenderPhases renders the Level 1 phases block, or nothing when there are
// no phases.
func (r *Renderer) RenderPhases(phases []trace.Phase) string {
	if len(phases) == 0 {
		return ""
	}

	view := phasesView{
		Badge:  output.CountStr(len(phases), "Phase", "Phases"),
		Phases: make([]phaseView, 0, len(phases)),
	}
	for _, p := range phases {
		pv := phaseView{
			ID:         p.ID.String(),
			Name:       p.Name,
			Goal:       p.Goal,
			Status:     p.Status,
			RoundCount: len(p.Rounds),
			Rounds:     make([]roundView, 0, len(p.Rounds)),
		}
		for _, rd := range p.Rounds {
			completed, decided := rd.Verdict()
			pv.Rounds = append(pv.Rounds, roundView{
				ID:         rd.RoundID.String(),
				Tasks:      rd.TaskCount(),
				Executions: len(rd.Executions),
				Decided:    decided,
				Completed:  completed,
			})
		}
		if p.Summary != "" {
			pv.Summary = r.truncateSummary(p.Summary)
		}
		view.Phases = append(view.Phases, pv)
	}

	return execute("phases", view)
}

// RenderFinalSummary renders the Level 4 final summary block, or nothing
// when summary is empty. Line breaks in the summary are preserved.
func (r *Renderer) RenderFinalSummary(summary string, phaseCount int) string {
	if summary == "" {
		return ""
	}
	return execute("summary", summaryView{
		PhaseCount: phaseCount,
		Text:       summary,
	})
}

// truncateSummary keeps the first SummaryLimit characters and always
// appends the ellipsis. Cutting happens before escaping so entities are
// never split.
func (r *Renderer) truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) > r.opts.SummaryLimit {
		runes = runes[:r.opts.SummaryLimit]
	}
	return string(runes) + r.opts.Ellipsis
}

type requestView struct {
	CoreGoal     string
	Requirements []string
	Constraints  []string
}

type phasesView struct {
	Badge  string
	Phases []phaseView
}

type phaseView struct {
	ID         string
	Name       string
	Goal       string
	Status     string
	RoundCount int
	Rounds     []roundView
	Summary    string
}

type roundView struct {
	ID         string
	Tasks      int
	Executions int
	Decided    bool
	Completed  bool
}

type summaryView struct {
	PhaseCount int
	Text       string
}

func execute(name string, data any) string {
	var buf bytes.Buffer
	if err := blocks.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("block render failed", "block", name, "error", err)
		return ""
	}
	return buf.String()
}

var blocks = template.Must(template.New("blocks").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(blockTemplates))

const blockTemplates = `
{{- define "request" -}}
<div class="request-container">
<div class="request-header">┌─ Level 0: Request Analysis ─────────────────</div>
{{- with .CoreGoal}}
<div class="request-section"><div class="section-label">│ Core Goal:</div><div class="section-line">│ {{.}}</div></div>
{{- end}}
{{- with .Requirements}}
<div class="request-section"><div class="section-label">│ Requirements:</div>
{{- range $i, $req := .}}<div class="section-line">│  {{inc $i}}) {{$req}}</div>{{end -}}
</div>
{{- end}}
{{- with .Constraints}}
<div class="request-section"><div class="section-label">│ Constraints:</div>
{{- range .}}<div class="section-line">│  - {{.}}</div>{{end -}}
</div>
{{- end}}
<div class="request-footer">└─ Request structured ───────────────────────</div>
</div>
{{- end -}}

{{- define "phases" -}}
<div class="phase-container">
<div class="phase-header">┌─ Level 1: Phase Planning ───────────────<span class="status-badge status-done">{{.Badge}}</span></div>
{{- range .Phases}}
<div class="phase">
<div class="phase-title">│ Phase {{.ID}}: {{.Name}}</div>
<div class="phase-goal">│ Goal: {{.Goal}}</div>
<div class="phase-meta">│ Rounds: {{.RoundCount}} | Status: {{.Status}}</div>
{{- range .Rounds}}
<div class="round">
<div class="round-title">│ Round {{.ID}}</div>
{{- if .Tasks}}
<div class="round-line">│ ├─ Plan: {{.Tasks}} Tasks</div>
{{- end}}
{{- if .Executions}}
<div class="round-line">│ ├─ Execute: {{.Executions}} Tools</div>
{{- end}}
{{- if .Decided}}
<div class="round-line">│ └─ Judge: {{if .Completed}}✅ Completed{{else}}🔄 Continue{{end}}</div>
{{- end}}
</div>
{{- end}}
{{- with .Summary}}
<div class="phase-summary">│ Summary: {{.}}</div>
{{- end}}
</div>
{{- end}}
<div class="phase-footer">└──────────────────────────────────────</div>
</div>
{{- end -}}

{{- define "summary" -}}
<div class="final-summary">
<div class="final-summary-header">
<div class="final-summary-title">┌─ Level 4: Final Summary ───────────────────</div>
<div class="final-summary-meta">│ Phases: {{.PhaseCount}}</div>
</div>
<div class="final-summary-body" style="white-space: pre-wrap;">{{.Text}}</div>
<div class="final-summary-footer">└─ Task completed ───────────────────────────</div>
</div>
{{- end -}}
`
