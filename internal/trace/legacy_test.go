package trace

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFromLegacyMessage(t *testing.T) {
	fixedClock(t)

	msg := LegacyMessage{
		Role:    "assistant",
		Content: strings.Repeat("c", 120),
		ToolCalls: []LegacyToolCall{
			{Tool: "read_file", Arguments: json.RawMessage(`{"path":"a.go"}`)},
			{Result: json.RawMessage(`not json`)},
		},
	}

	sc, ok := FromLegacyMessage(msg)
	if !ok {
		t.Fatal("expected conversion")
	}
	if got := sc.Req().CoreGoal; got != strings.Repeat("c", 100) {
		t.Errorf("core goal should be first 100 runes, got %d runes", len([]rune(got)))
	}
	if len(sc.Phases) != 1 {
		t.Fatalf("phases = %d, want 1", len(sc.Phases))
	}
	p := sc.Phases[0]
	if p.Name != "Main Task" || p.Status != StatusDone || p.Summary != msg.Content {
		t.Errorf("unexpected phase %+v", p)
	}
	if len(p.Rounds) != 1 || len(p.Rounds[0].Executions) != 2 {
		t.Fatalf("expected one round with two executions, got %+v", p.Rounds)
	}
	if _, ok := p.Rounds[0].Verdict(); ok {
		t.Error("legacy rounds carry no judge verdict")
	}

	var second Execution
	if err := json.Unmarshal(p.Rounds[0].Executions[1], &second); err != nil {
		t.Fatal(err)
	}
	if second.Tool != "unknown" || string(second.Result) != "{}" || second.TaskID != 2 {
		t.Errorf("unexpected second execution %+v", second)
	}
	if sc.Summary != msg.Content {
		t.Error("final summary should be the message content")
	}
}

func TestFromLegacyMessageRejects(t *testing.T) {
	tests := []struct {
		name string
		msg  LegacyMessage
	}{
		{"user role", LegacyMessage{Role: "user", Content: "hi", ToolCalls: []LegacyToolCall{{Tool: "x"}}}},
		{"no tool calls", LegacyMessage{Role: "assistant", Content: "plain reply"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := FromLegacyMessage(tt.msg); ok {
				t.Error("expected no conversion")
			}
		})
	}
}

func TestFromLegacyMessageEmbedded(t *testing.T) {
	embedded := &StructuredContext{Summary: "embedded"}
	sc, ok := FromLegacyMessage(LegacyMessage{Role: "assistant", StructuredContext: embedded})
	if !ok || sc != embedded {
		t.Error("embedded structured context should be returned as is")
	}
}
