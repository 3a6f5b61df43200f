package render

import (
	"strings"

	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

// Stylesheet styles the classes emitted by Render. Hosts that embed the
// fragment usually ship their own.
const Stylesheet = `body { font-family: Consolas, monospace; background: #fff; color: #000; margin: 24px; }
.structured-context { margin-top: 12px; }
.request-container, .phase-container { margin-bottom: 16px; }
.request-header, .phase-header { font-weight: 700; margin-bottom: 8px; }
.section-label { font-size: 11px; font-weight: 700; margin-bottom: 4px; }
.section-line { font-size: 11px; padding-left: 10px; }
.request-section { margin-bottom: 8px; }
.request-footer, .phase-footer { font-size: 10px; color: #666; margin-top: 10px; }
.status-badge { float: right; border: 1px solid #000; padding: 0 6px; font-size: 10px; }
.phase { margin: 10px 0 10px 20px; padding: 10px; border: 2px solid #000; }
.phase-title { font-size: 12px; font-weight: 700; margin-bottom: 4px; }
.phase-goal { font-size: 11px; color: #333; margin-bottom: 6px; }
.phase-meta, .round-line { font-size: 10px; color: #666; }
.round { margin: 10px 0 10px 20px; padding: 10px; border: 1px solid #000; background: #fafafa; }
.round-title { font-size: 11px; font-weight: 700; margin-bottom: 6px; }
.phase-summary { font-size: 10px; color: #666; margin-top: 6px; padding-top: 6px; border-top: 1px dashed #999; }
.final-summary { padding: 16px; margin: 16px 0; border: 3px solid #000; }
.final-summary-header { border-bottom: 1px solid #000; padding-bottom: 8px; margin-bottom: 10px; }
.final-summary-title { font-size: 14px; font-weight: 700; }
.final-summary-meta { font-size: 10px; color: #666; margin-top: 4px; }
.final-summary-body { font-size: 12px; line-height: 1.6; padding-left: 10px; }
.final-summary-footer { font-size: 10px; color: #666; margin-top: 10px; border-top: 1px solid #000; padding-top: 8px; }
`

// Document wraps the rendered fragment in a standalone HTML page.
func (r *Renderer) Document(sc *trace.StructuredContext, title string) string {
	if title == "" {
		title = "Structured Context"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>" + Escape(title) + "</title>\n")
	sb.WriteString("<style>\n" + Stylesheet + "</style>\n</head>\n<body>\n")
	sb.WriteString(r.Render(sc))
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
