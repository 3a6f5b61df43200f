package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
	"github.com/Dicklesworthstone/tracerender/internal/watcher"
)

type renderOptions struct {
	output   string
	page     bool
	title    string
	markdown bool
	watch    bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a trace as HTML",
		Long: `Render a structured context (JSON or YAML) as the nested HTML view.

By default an HTML fragment is written to stdout. Use --page for a standalone
document and -o to write a file. With --watch the output file is rewritten
whenever the input changes.

Examples:
  tracerender render trace.json
  tracerender render trace.yaml -o trace.html --page
  tracerender render trace.json -o trace.html --page --watch
  cat trace.json | tracerender render -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.page, "page", false, "wrap the fragment in a standalone HTML document")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: the core goal)")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "emit Markdown instead of HTML")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the input file changes")

	return cmd
}

func runRender(cmd *cobra.Command, path string, opts renderOptions) error {
	if opts.watch {
		if path == "-" {
			return errors.New("--watch needs a file, not stdin")
		}
		if opts.output == "" || opts.output == "-" {
			return errors.New("--watch needs an output file (-o)")
		}
	}

	r := newRenderer()
	if err := renderOnce(cmd, r, path, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchAndRender(cmd, r, path, opts)
}

func renderOnce(cmd *cobra.Command, r *render.Renderer, path string, opts renderOptions) error {
	sc, err := loadTrace(cmd, path)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, []byte(renderTrace(r, sc, opts)))
}

func renderTrace(r *render.Renderer, sc *trace.StructuredContext, opts renderOptions) string {
	switch {
	case opts.markdown:
		return r.Markdown(sc)
	case opts.page:
		title := opts.title
		if title == "" {
			title = sc.Req().CoreGoal
		}
		return r.Document(sc, title)
	default:
		return r.Render(sc) + "\n"
	}
}

func watchAndRender(cmd *cobra.Command, r *render.Renderer, path string, opts renderOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	w, err := watcher.Watch(ctx, path, func(string) {
		if err := renderOnce(cmd, r, path, opts); err != nil {
			// Keep watching; the next save may fix the input.
			slog.Error("re-render failed", "path", path, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Rendered %s -> %s\n", path, opts.output)
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", path)
	<-ctx.Done()
	return nil
}
