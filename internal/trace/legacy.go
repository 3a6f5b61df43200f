package trace

import "encoding/json"

// LegacyMessage is a chat message from before traces were structured:
// an assistant reply plus the tool calls it made.
type LegacyMessage struct {
	Role              string             `json:"role"`
	Content           string             `json:"content"`
	ToolCalls         []LegacyToolCall   `json:"tool_calls,omitempty"`
	StructuredContext *StructuredContext `json:"structured_context,omitempty"`
}

// LegacyToolCall is one tool invocation in a legacy message.
type LegacyToolCall struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// FromLegacyMessage rebuilds a structured context from a legacy assistant
// message. Messages that already embed a structured context return it as is.
// Non-assistant messages and replies without tool calls cannot be converted.
func FromLegacyMessage(msg LegacyMessage) (*StructuredContext, bool) {
	if msg.Role != "assistant" {
		return nil, false
	}
	if msg.StructuredContext != nil {
		return msg.StructuredContext, true
	}
	if len(msg.ToolCalls) == 0 {
		return nil, false
	}

	sc := New()
	sc.SetRequest("historical message", &Request{CoreGoal: firstRunes(msg.Content, 100)})

	round := Round{RoundID: IntID(1), Plan: &Plan{}}
	for i, tc := range msg.ToolCalls {
		tool := tc.Tool
		if tool == "" {
			tool = "unknown"
		}
		b, err := json.Marshal(Execution{
			TaskID:    i + 1,
			Tool:      tool,
			Arguments: orEmptyObject(tc.Arguments),
			Result:    orEmptyObject(tc.Result),
			Timestamp: unixSeconds(now()),
		})
		if err != nil {
			continue
		}
		round.Executions = append(round.Executions, b)
	}

	phase := sc.AddPhase(IntID(1), "Main Task", "Historical task")
	phase.Status = StatusDone
	phase.Summary = msg.Content
	phase.Rounds = append(phase.Rounds, round)
	sc.SetFinalSummary(msg.Content)
	return sc, true
}

func orEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("{}")
	}
	return raw
}
