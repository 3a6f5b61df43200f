package preview

import (
	"strings"
	"testing"

	"github.com/Dicklesworthstone/tracerender/internal/trace"
	"github.com/Dicklesworthstone/tracerender/internal/tui/terminal"
)

func sample() *trace.StructuredContext {
	sc := trace.New()
	sc.SetRequest("build me a tool", &trace.Request{
		CoreGoal:     "Build a small command line tool",
		Requirements: []string{"parse flags"},
	})
	p := sc.AddPhase(trace.IntID(1), "Setup", "Prepare the repository for the first release of the tool")
	p.Status = "done"
	sc.SetFinalSummary("Everything shipped")
	return sc
}

func TestPlainWrapsToWidth(t *testing.T) {
	p := New(nil, terminal.Capabilities{}, Options{Plain: true, Width: 30})
	out, err := p.Render(sample())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.HasPrefix(out, "Build a small command line to…\n") {
		t.Errorf("unexpected header line: %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{"Level 0: Request Analysis", "Phase 1: Setup", "Level 4: Final Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain preview missing %q", want)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		// Single words longer than the width may overflow; none do here.
		if len([]rune(line)) > 30 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestPlainHeaderForNil(t *testing.T) {
	p := New(nil, terminal.Capabilities{}, Options{Plain: true, Width: 80})
	out, err := p.Render(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "untitled trace · 0 phases") {
		t.Errorf("header = %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestGlamourNoTTY(t *testing.T) {
	p := New(nil, terminal.Capabilities{TTY: false}, Options{Style: "auto", Width: 100})
	if got := p.Style(); got != "notty" {
		t.Fatalf("Style() = %q, want notty", got)
	}
	out, err := p.Render(sample())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"Request Analysis", "Setup", "Everything shipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownStyle(t *testing.T) {
	p := New(nil, terminal.Capabilities{}, Options{Style: "no-such-style", Width: 80})
	if _, err := p.Render(sample()); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestWidthFallsBackToTerminal(t *testing.T) {
	p := New(nil, terminal.Capabilities{Width: 132}, Options{})
	if got := p.Width(); got != 132 {
		t.Errorf("Width() = %d, want 132", got)
	}
}
