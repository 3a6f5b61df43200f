package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

// SummaryResult is the output of the summary command
type SummaryResult struct {
	CoreGoal        string         `json:"core_goal"`
	Phases          []PhaseSummary `json:"phases"`
	Rounds          int            `json:"rounds"`
	Executions      int            `json:"executions"`
	EstimatedTokens int            `json:"estimated_tokens"`
	Digest          string         `json:"text"`
}

// PhaseSummary is one phase line of the summary
type PhaseSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Rounds int    `json:"rounds"`
}

func newSummaryResult(sc *trace.StructuredContext) *SummaryResult {
	res := &SummaryResult{
		CoreGoal:        sc.Req().CoreGoal,
		Phases:          []PhaseSummary{},
		EstimatedTokens: sc.EstimateTokens(),
		Digest:          sc.SummaryText(),
	}
	for _, p := range sc.Phases {
		res.Phases = append(res.Phases, PhaseSummary{
			ID:     p.ID.String(),
			Name:   p.Name,
			Status: p.Status,
			Rounds: len(p.Rounds),
		})
		res.Rounds += len(p.Rounds)
		for _, r := range p.Rounds {
			res.Executions += len(r.Executions)
		}
	}
	return res
}

// Text outputs the summary as human-readable text
func (r *SummaryResult) Text(w io.Writer) error {
	fmt.Fprint(w, r.Digest)
	fmt.Fprintln(w)

	if len(r.Phases) > 0 {
		color := output.UseColor(w)
		table := output.NewStyledTable(w, "ID", "PHASE", "STATUS", "ROUNDS")
		for _, p := range r.Phases {
			status := p.Status
			if color {
				status = output.StatusBadge(status)
			}
			table.AddRow(p.ID, output.Truncate(p.Name, 40), status, fmt.Sprintf("%d", p.Rounds))
		}
		table.WithFooter(fmt.Sprintf("%s, %s, ~%d tokens",
			output.CountStr(r.Rounds, "round", "rounds"),
			output.CountStr(r.Executions, "execution", "executions"),
			r.EstimatedTokens))
		table.Render()
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print a short text summary of a trace",
		Long: `Print the request, phase count and final summary of a trace, followed by
a table of phases and a rough token estimate.

Examples:
  tracerender summary trace.json
  tracerender summary trace.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadTrace(cmd, args[0])
			if err != nil {
				return err
			}
			res := newSummaryResult(sc)
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return res.Text(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
