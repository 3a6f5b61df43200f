package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

func newLegacyCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "legacy FILE",
		Short: "Convert a legacy assistant message into a structured context",
		Long: `Read a legacy chat message (role, content, tool_calls) and write the
equivalent structured context as JSON. The result has a single "Main Task"
phase holding one round with every tool call as an execution.

Messages that already embed a structured_context are passed through.

Examples:
  tracerender legacy message.json -o trace.json
  tracerender legacy message.json | tracerender render -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			var msg trace.LegacyMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("parsing legacy message: %w", err)
			}
			sc, ok := trace.FromLegacyMessage(msg)
			if !ok {
				return errors.New("message cannot be converted: need an assistant message with tool calls")
			}

			body, err := trace.MarshalIndent(sc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, body)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}
