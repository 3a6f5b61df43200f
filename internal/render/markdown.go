package render

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown renders the same blocks as Render, in the same order, as
// Markdown for terminal display.
func (r *Renderer) Markdown(sc *trace.StructuredContext) string {
	if sc == nil {
		sc = &trace.StructuredContext{}
	}

	var sb strings.Builder
	req := sc.Req()

	sb.WriteString("## Level 0: Request Analysis\n\n")
	if req.CoreGoal != "" {
		fmt.Fprintf(&sb, "**Core Goal:** %s\n\n", escapeMarkdown(req.CoreGoal))
	}
	if len(req.Requirements) > 0 {
		sb.WriteString("**Requirements:**\n\n")
		for i, item := range req.Requirements {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, escapeMarkdown(item))
		}
		sb.WriteString("\n")
	}
	if len(req.Constraints) > 0 {
		sb.WriteString("**Constraints:**\n\n")
		for _, item := range req.Constraints {
			fmt.Fprintf(&sb, "- %s\n", escapeMarkdown(item))
		}
		sb.WriteString("\n")
	}

	if len(sc.Phases) > 0 {
		fmt.Fprintf(&sb, "## Level 1: Phase Planning (%s)\n\n", output.CountStr(len(sc.Phases), "Phase", "Phases"))
		for _, p := range sc.Phases {
			fmt.Fprintf(&sb, "### Phase %s: %s\n\n", escapeMarkdown(p.ID.String()), escapeMarkdown(p.Name))
			fmt.Fprintf(&sb, "Goal: %s\n\n", escapeMarkdown(p.Goal))
			fmt.Fprintf(&sb, "Rounds: %d | Status: %s\n\n", len(p.Rounds), escapeMarkdown(p.Status))
			for _, rd := range p.Rounds {
				parts := []string{"Round " + escapeMarkdown(rd.RoundID.String())}
				if n := rd.TaskCount(); n > 0 {
					parts = append(parts, fmt.Sprintf("Plan: %d Tasks", n))
				}
				if n := len(rd.Executions); n > 0 {
					parts = append(parts, fmt.Sprintf("Execute: %d Tools", n))
				}
				if completed, ok := rd.Verdict(); ok {
					parts = append(parts, "Judge: "+verdictLabel(completed))
				}
				fmt.Fprintf(&sb, "- %s\n", strings.Join(parts, " · "))
			}
			if len(p.Rounds) > 0 {
				sb.WriteString("\n")
			}
			if p.Summary != "" {
				fmt.Fprintf(&sb, "> Summary: %s\n\n", escapeMarkdown(r.truncateSummary(p.Summary)))
			}
		}
	}

	if sc.Summary != "" {
		sb.WriteString("## Level 4: Final Summary\n\n")
		fmt.Fprintf(&sb, "Phases: %d\n\n", len(sc.Phases))
		for _, line := range strings.Split(sc.Summary, "\n") {
			// Hard line breaks keep the summary's own line structure.
			fmt.Fprintf(&sb, "%s  \n", escapeMarkdown(line))
		}
	}

	return sb.String()
}

func verdictLabel(completed bool) string {
	if completed {
		return "✅ Completed"
	}
	return "🔄 Continue"
}
