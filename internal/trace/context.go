// Package trace models the structured context produced by a multi-phase task
// run: the analysed request, the phases with their plan/execute/judge rounds,
// and the final summary.
package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Architecture is the layout tag stamped on new contexts.
const Architecture = "request-phase-task"

// Phase statuses written by the builder.
const (
	StatusRunning = "running"
	StatusDone    = "done"
)

// now is swapped in tests to make builder timestamps deterministic.
var now = time.Now

// StructuredContext is the root of a task trace. Every field is optional.
type StructuredContext struct {
	Architecture string   `json:"architecture,omitempty"`
	CreatedAt    float64  `json:"created_at,omitempty"`
	Request      *Request `json:"request,omitempty"`
	Phases       []Phase  `json:"phases,omitempty"`
	Summary      string   `json:"summary,omitempty"`
}

// Request is the analysed form of the user's input.
type Request struct {
	OriginalInput string   `json:"original_input,omitempty"`
	CoreGoal      string   `json:"core_goal,omitempty"`
	Requirements  []string `json:"requirements,omitempty"`
	Constraints   []string `json:"constraints,omitempty"`
}

// Phase is a top-level unit of work made of ordered rounds.
type Phase struct {
	ID      ID      `json:"id"`
	Name    string  `json:"name"`
	Goal    string  `json:"goal"`
	Status  string  `json:"status"`
	Rounds  []Round `json:"rounds,omitempty"`
	Summary string  `json:"summary,omitempty"`
}

// Round is one plan/execute/judge cycle inside a phase.
type Round struct {
	RoundID    ID                `json:"round_id"`
	Plan       *Plan             `json:"plan,omitempty"`
	Executions []json.RawMessage `json:"executions,omitempty"`
	Judge      *Judge            `json:"judge,omitempty"`
}

// Plan holds the tasks planned for a round. Tasks are kept opaque.
type Plan struct {
	Tasks     []json.RawMessage `json:"tasks,omitempty"`
	Reasoning string            `json:"reasoning,omitempty"`
}

// Execution is the record the builder appends for one tool call.
type Execution struct {
	TaskID    int             `json:"task_id"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Timestamp float64         `json:"timestamp"`
}

// Judge is the verdict attached to a round. A nil PhaseCompleted means the
// judge did not decide; a phase_completed key holding null decodes as false.
type Judge struct {
	PhaseCompleted *bool           `json:"phase_completed,omitempty"`
	TaskEvaluation json.RawMessage `json:"task_evaluation,omitempty"`
	Decision       json.RawMessage `json:"decision,omitempty"`
	PhaseMetrics   json.RawMessage `json:"phase_metrics,omitempty"`
	Summary        string          `json:"summary,omitempty"`
}

// UnmarshalJSON decodes a judge object, keeping a present phase_completed
// key distinct from a missing one.
func (j *Judge) UnmarshalJSON(data []byte) error {
	type plain Judge
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.PhaseCompleted == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}
		if _, ok := keys["phase_completed"]; ok {
			v.PhaseCompleted = new(bool)
		}
	}
	*j = Judge(v)
	return nil
}

// JudgeDetails carries the optional judge fields besides the verdict and
// summary. Each value is encoded as JSON when set.
type JudgeDetails struct {
	TaskEvaluation any
	Decision       any
	PhaseMetrics   any
}

// New returns an empty context stamped with the architecture tag and the
// current time.
func New() *StructuredContext {
	return &StructuredContext{
		Architecture: Architecture,
		CreatedAt:    unixSeconds(now()),
		Request:      &Request{},
	}
}

// SetRequest records the raw input and, when available, the analysed goal,
// requirements and constraints.
func (c *StructuredContext) SetRequest(originalInput string, analyzed *Request) {
	if c.Request == nil {
		c.Request = &Request{}
	}
	c.Request.OriginalInput = originalInput
	if analyzed != nil {
		c.Request.CoreGoal = analyzed.CoreGoal
		c.Request.Requirements = analyzed.Requirements
		c.Request.Constraints = analyzed.Constraints
	}
}

// AddPhase appends a running phase and returns a pointer to it. The pointer
// is only valid until the next AddPhase call.
func (c *StructuredContext) AddPhase(id ID, name, goal string) *Phase {
	c.Phases = append(c.Phases, Phase{
		ID:     id,
		Name:   name,
		Goal:   goal,
		Status: StatusRunning,
		Rounds: []Round{},
	})
	return &c.Phases[len(c.Phases)-1]
}

// Phase returns the first phase with the given id.
func (c *StructuredContext) Phase(id ID) (*Phase, bool) {
	for i := range c.Phases {
		if c.Phases[i].ID == id {
			return &c.Phases[i], true
		}
	}
	return nil, false
}

// AddRound appends a round to the phase with the given id. It reports false
// when no such phase exists.
func (c *StructuredContext) AddRound(phaseID ID, r Round) bool {
	p, ok := c.Phase(phaseID)
	if !ok {
		return false
	}
	p.Rounds = append(p.Rounds, r)
	return true
}

// SetPhaseSummary sets the summary and status of a phase. An empty status
// marks the phase done.
func (c *StructuredContext) SetPhaseSummary(phaseID ID, summary, status string) bool {
	p, ok := c.Phase(phaseID)
	if !ok {
		return false
	}
	if status == "" {
		status = StatusDone
	}
	p.Summary = summary
	p.Status = status
	return true
}

// SetFinalSummary sets the run-level summary.
func (c *StructuredContext) SetFinalSummary(summary string) {
	c.Summary = summary
}

// NewRound returns an empty round with the given id. Its judge starts
// undecided, so the round reads as continuing until SetJudge is called.
func NewRound(id ID) Round {
	return Round{RoundID: id, Plan: &Plan{}, Judge: &Judge{PhaseCompleted: new(bool)}}
}

// SetPlan replaces the round's planned tasks.
func (r *Round) SetPlan(reasoning string, tasks ...any) error {
	raw := make([]json.RawMessage, 0, len(tasks))
	for i, t := range tasks {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding task %d: %w", i+1, err)
		}
		raw = append(raw, b)
	}
	r.Plan = &Plan{Tasks: raw, Reasoning: reasoning}
	return nil
}

// AddExecution appends a tool call record to the round.
func (r *Round) AddExecution(taskID int, tool string, arguments, result any) error {
	args, err := json.Marshal(arguments)
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	res, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	b, err := json.Marshal(Execution{
		TaskID:    taskID,
		Tool:      tool,
		Arguments: args,
		Result:    res,
		Timestamp: unixSeconds(now()),
	})
	if err != nil {
		return fmt.Errorf("encoding execution: %w", err)
	}
	r.Executions = append(r.Executions, b)
	return nil
}

// SetJudge records the judge verdict for the round. At most one details
// value is used.
func (r *Round) SetJudge(completed bool, summary string, details ...JudgeDetails) error {
	j := &Judge{PhaseCompleted: &completed, Summary: summary}
	if len(details) > 0 {
		d := details[0]
		var err error
		if j.TaskEvaluation, err = encodeOptional(d.TaskEvaluation); err != nil {
			return fmt.Errorf("encoding task evaluation: %w", err)
		}
		if j.Decision, err = encodeOptional(d.Decision); err != nil {
			return fmt.Errorf("encoding decision: %w", err)
		}
		if j.PhaseMetrics, err = encodeOptional(d.PhaseMetrics); err != nil {
			return fmt.Errorf("encoding phase metrics: %w", err)
		}
	}
	r.Judge = j
	return nil
}

func encodeOptional(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// TaskCount returns the number of planned tasks.
func (r Round) TaskCount() int {
	if r.Plan == nil {
		return 0
	}
	return len(r.Plan.Tasks)
}

// Verdict returns the judge decision and whether one was recorded.
func (r Round) Verdict() (completed, ok bool) {
	if r.Judge == nil || r.Judge.PhaseCompleted == nil {
		return false, false
	}
	return *r.Judge.PhaseCompleted, true
}

// Req returns the request, or an empty one when absent.
func (c *StructuredContext) Req() Request {
	if c == nil || c.Request == nil {
		return Request{}
	}
	return *c.Request
}

// SummaryText returns a short plain-text digest suitable for listings.
func (c *StructuredContext) SummaryText() string {
	goal := c.Req().CoreGoal
	if goal == "" {
		goal = "unknown"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Request: %s\n", goal)
	fmt.Fprintf(&sb, "Phases: %d\n", len(c.Phases))
	if c.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s...", firstRunes(c.Summary, 100))
	}
	return sb.String()
}

// EstimateTokens gives a rough token count for the compact JSON form,
// assuming about 0.3 tokens per character.
func (c *StructuredContext) EstimateTokens() int {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return 0
	}
	n := utf8.RuneCount(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return int(float64(n) * 0.3)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
