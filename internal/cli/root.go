package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/config"
	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
	"github.com/Dicklesworthstone/tracerender/internal/util"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	Version = "dev" // Set at build time with -ldflags
)

// ExitError asks main to exit with Code without printing anything more.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tracerender",
		Short: "Render structured agent traces as HTML, Markdown or terminal previews",
		Long: `tracerender turns a structured context trace (request, phases, rounds
and final summary) into a nested HTML view, a terminal preview or a diff.

Quick Start:
  tracerender render trace.json -o trace.html --page   # Standalone HTML page
  tracerender preview trace.yaml                       # Styled terminal preview
  tracerender view trace.json --watch                  # Pager that follows edits
  tracerender store save trace.json --id run-1         # Keep a trace for later
  tracerender serve                                    # HTTP API on 127.0.0.1:8765`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), verbose)

			// Skip config loading for commands that never read it
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				// Use defaults if config doesn't exist
				cfg = config.Default()
			}
			slog.Debug("config loaded", "path", configPath(), "store", cfg.Store.Path)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/tracerender/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(
		// Rendering
		newRenderCmd(),
		newPreviewCmd(),
		newViewCmd(),
		newDiffCmd(),
		newSummaryCmd(),
		newLegacyCmd(),

		// Persistence and serving
		newStoreCmd(),
		newServeCmd(),

		// Utilities
		newVersionCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func currentConfig() *config.Config {
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg
}

func newRenderer() *render.Renderer {
	return render.New(currentConfig().RenderOptions())
}

// loadTrace reads a context file; "-" reads JSON from stdin.
func loadTrace(cmd *cobra.Command, path string) (*trace.StructuredContext, error) {
	if path == "-" {
		return trace.Decode(cmd.InOrStdin(), trace.FormatJSON)
	}
	return trace.Load(path)
}

// writeOutput writes data to path atomically, or to stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tracerender version %s\n", Version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), configPath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if _, err := os.Stat(configPath()); err != nil {
				fmt.Fprintln(w, "# Using default configuration (no config file found)")
				fmt.Fprintln(w)
			}
			return config.Print(currentConfig(), w)
		},
	})

	return cmd
}
