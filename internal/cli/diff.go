package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/diff"
	"github.com/Dicklesworthstone/tracerender/internal/output"
)

func newDiffCmd() *cobra.Command {
	var (
		markdown bool
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare the renderings of two traces",
		Long: `Render both traces and print a line diff of the results.

Lines are prefixed with "+" (only in NEW), "-" (only in OLD) or a space.
HTML output is split one tag per line so changes are easy to spot.

Examples:
  tracerender diff before.json after.json
  tracerender diff run-1.yaml run-2.yaml --markdown
  tracerender diff a.json b.json --exit-code && echo same`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer()

			var texts [2]string
			for i, path := range args {
				sc, err := loadTrace(cmd, path)
				if err != nil {
					return err
				}
				if markdown {
					texts[i] = r.Markdown(sc)
				} else {
					texts[i] = splitTags(r.Render(sc))
				}
			}

			res := diff.Lines(texts[0], texts[1])
			w := cmd.OutOrStdout()
			if !res.Changed() {
				fmt.Fprintln(w, "No differences")
				return nil
			}
			if err := res.Write(w, output.UseColor(w)); err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%s, %s\n",
				output.CountStr(res.Added, "line added", "lines added"),
				output.CountStr(res.Removed, "line removed", "lines removed"))

			if exitCode {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "diff the Markdown rendering instead of HTML")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when the renderings differ")

	return cmd
}

// splitTags puts each <div> on its own line so line diffs stay readable.
func splitTags(html string) string {
	return strings.ReplaceAll(html, "><div", ">\n<div") + "\n"
}
