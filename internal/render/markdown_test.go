package render

import (
	"strings"
	"testing"

	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

func TestMarkdown(t *testing.T) {
	md := New(DefaultOptions()).Markdown(sampleContext())

	for _, s := range []string{
		"## Level 0: Request Analysis",
		"**Core Goal:** Build a CLI",
		"1. parse flags\n2. print help",
		"- no cgo",
		"## Level 1: Phase Planning (2 Phases)",
		"### Phase 1: Setup",
		"Rounds: 1 | Status: done",
		"- Round 1 · Plan: 2 Tasks · Execute: 3 Tools · Judge: ✅ Completed",
		"> Summary: Repo is ready...",
		"### Phase p-2: Build",
		"## Level 4: Final Summary",
		"Phases: 2",
		"All phases finished.  \nShipped v1.  \n",
	} {
		if !strings.Contains(md, s) {
			t.Errorf("expected %q in:\n%s", s, md)
		}
	}
}

func TestMarkdownEmpty(t *testing.T) {
	md := New(DefaultOptions()).Markdown(nil)
	if md != "## Level 0: Request Analysis\n\n" {
		t.Errorf("empty context should render only the request heading, got %q", md)
	}
}

func TestMarkdownEscapes(t *testing.T) {
	md := New(DefaultOptions()).Markdown(&trace.StructuredContext{
		Request: &trace.Request{CoreGoal: "use *bold* and <tags>"},
	})
	if !strings.Contains(md, `use \*bold\* and \<tags\>`) {
		t.Errorf("markdown metacharacters should be escaped:\n%s", md)
	}
}
