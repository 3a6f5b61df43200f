package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/preview"
	"github.com/Dicklesworthstone/tracerender/internal/tui/terminal"
)

func newPreviewCmd() *cobra.Command {
	var opts preview.Options

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Print a styled terminal preview of a trace",
		Long: `Render a trace as Markdown and print it through glamour.

The style follows [preview] in the config; "auto" picks dark or light from the
terminal background, and plain text when stdout is not a terminal.

Examples:
  tracerender preview trace.json
  tracerender preview trace.yaml --style light --width 100
  tracerender preview trace.json --plain | less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := previewText(cmd, args[0], opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "word-wrapped Markdown without styling")
	cmd.Flags().StringVar(&opts.Style, "style", "", "glamour style: auto, dark, light, notty, dracula (default from config)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "wrap width (default from config, then terminal)")

	return cmd
}

// previewText loads path and renders it with opts, filling unset options
// from the config.
func previewText(cmd *cobra.Command, path string, opts preview.Options) (string, error) {
	sc, err := loadTrace(cmd, path)
	if err != nil {
		return "", err
	}

	c := currentConfig()
	if opts.Style == "" {
		opts.Style = c.Preview.Style
	}
	if opts.Width <= 0 {
		opts.Width = c.Preview.Width
	}

	p := preview.New(newRenderer(), terminal.Detect(), opts)
	return p.Render(sc)
}
