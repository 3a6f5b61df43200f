package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/preview"
	"github.com/Dicklesworthstone/tracerender/internal/tui/pager"
	"github.com/Dicklesworthstone/tracerender/internal/watcher"
)

func newViewCmd() *cobra.Command {
	var (
		opts  preview.Options
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Open a trace preview in a scrollable pager",
		Long: `Open the terminal preview in a full-screen pager.

Keys: ↑/↓ or j/k scroll, pgup/pgdn page, g/G top and bottom, q or esc quit.
With --watch the pager reloads when the file changes.

Examples:
  tracerender view trace.json
  tracerender view trace.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path == "-" {
				return errors.New("view needs a file, not stdin")
			}
			return runView(cmd, path, opts, watch)
		},
	}

	cmd.Flags().StringVar(&opts.Style, "style", "", "glamour style (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the file changes")

	return cmd
}

func runView(cmd *cobra.Command, path string, opts preview.Options, watch bool) error {
	text, err := previewText(cmd, path, opts)
	if err != nil {
		return err
	}

	sc, err := loadTrace(cmd, path)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s · %s", path, output.CountStr(len(sc.Phases), "phase", "phases"))

	prog, done := pager.Run(title, text)

	if watch {
		w, err := watcher.Watch(cmd.Context(), path, func(string) {
			text, err := previewText(cmd, path, opts)
			if err != nil {
				prog.Send(pager.ErrorMsg{Err: err})
				return
			}
			prog.Send(pager.ContentMsg{Content: text})
		})
		if err != nil {
			prog.Quit()
			<-done
			return err
		}
		defer w.Stop()
	}

	select {
	case err := <-done:
		return err
	case <-cmd.Context().Done():
		prog.Quit()
		return <-done
	}
}
