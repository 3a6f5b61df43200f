package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "request": {"core_goal": "Build CLI", "requirements": ["a", "b"]},
  "phases": [
    {
      "id": 1,
      "name": "Setup",
      "goal": "Prepare",
      "status": "done",
      "rounds": [
        {"round_id": 1, "plan": {"tasks": [{"id": 1}, "free text"]}, "executions": [{}, 3], "judge": {"phase_completed": false}},
        {"round_id": "r2", "judge": {}}
      ],
      "summary": "ok"
    },
    {"id": "p-2", "name": "Ship", "goal": "Release", "status": "running"}
  ],
  "summary": "finished"
}`

const sampleYAML = `
request:
  core_goal: Build CLI
  requirements: [a, b]
phases:
  - id: 1
    name: Setup
    goal: Prepare
    status: done
    rounds:
      - round_id: 1
        plan:
          tasks:
            - id: 1
            - free text
        executions: [{}, 3]
        judge:
          phase_completed: false
      - round_id: r2
        judge: {}
    summary: ok
  - id: p-2
    name: Ship
    goal: Release
    status: running
summary: finished
`

func checkSample(t *testing.T, sc *StructuredContext) {
	t.Helper()

	if sc.Req().CoreGoal != "Build CLI" {
		t.Errorf("core_goal = %q", sc.Req().CoreGoal)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(sc.Phases))
	}
	p := sc.Phases[0]
	if p.ID != "1" || !p.ID.IsNumeric() {
		t.Errorf("phase id = %q, want numeric 1", p.ID)
	}
	if sc.Phases[1].ID != "p-2" {
		t.Errorf("phase 2 id = %q, want p-2", sc.Phases[1].ID)
	}
	if len(p.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(p.Rounds))
	}
	if got := p.Rounds[0].TaskCount(); got != 2 {
		t.Errorf("tasks = %d, want 2", got)
	}
	if got := len(p.Rounds[0].Executions); got != 2 {
		t.Errorf("executions = %d, want 2", got)
	}
	if completed, ok := p.Rounds[0].Verdict(); !ok || completed {
		t.Errorf("round 1 verdict = (%v, %v), want (false, true)", completed, ok)
	}
	if _, ok := p.Rounds[1].Verdict(); ok {
		t.Error("round 2 should have no verdict")
	}
	if p.Rounds[1].RoundID != "r2" {
		t.Errorf("round id = %q, want r2", p.Rounds[1].RoundID)
	}
	if sc.Summary != "finished" {
		t.Errorf("summary = %q", sc.Summary)
	}
}

func TestParseJSON(t *testing.T) {
	sc, err := Parse([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checkSample(t, sc)
}

func TestParseYAML(t *testing.T) {
	sc, err := Parse([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checkSample(t, sc)
}

func TestParseEmpty(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		sc, err := Parse([]byte("  \n"), f)
		if err != nil {
			t.Fatalf("%s: Parse: %v", f, err)
		}
		if sc.Request != nil || len(sc.Phases) != 0 || sc.Summary != "" {
			t.Errorf("%s: expected empty context, got %+v", f, sc)
		}
	}
}

func TestParseTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"rounds not an array", `{"phases":[{"id":1,"rounds":"nope"}]}`},
		{"id is an object", `{"phases":[{"id":{"x":1}}]}`},
		{"requirements not strings", `{"request":{"requirements":[1,2]}}`},
		{"phase_completed not bool", `{"phases":[{"id":1,"rounds":[{"round_id":1,"judge":{"phase_completed":"yes"}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input), FormatJSON); err == nil {
				t.Error("expected error for malformed context")
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"trace.json": FormatJSON,
		"trace.yaml": FormatYAML,
		"trace.YML":  FormatYAML,
		"trace":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoadAndMarshalIndent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkSample(t, sc)

	out, err := MarshalIndent(sc)
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	if !strings.Contains(string(out), `"id": 1,`) {
		t.Errorf("numeric id should stay a number:\n%s", out)
	}
	if !strings.Contains(string(out), `"id": "p-2"`) {
		t.Errorf("string id should stay a string:\n%s", out)
	}

	again, err := Parse(out, FormatJSON)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	checkSample(t, again)
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
