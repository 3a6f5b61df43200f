package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/output"
	"github.com/Dicklesworthstone/tracerender/internal/store"
	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

func openStore() (*store.Store, error) {
	return store.Open(currentConfig().Store.Path)
}

// withStore opens the configured store for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save, list and render traces kept in the local database",
		Long: `Manage traces kept in the SQLite database at [store] path in the config
(default ~/.local/share/tracerender/traces.db).`,
	}

	cmd.AddCommand(
		newStoreSaveCmd(),
		newStoreGetCmd(),
		newStoreListCmd(),
		newStoreRmCmd(),
		newStoreRenderCmd(),
	)
	return cmd
}

func newStoreSaveCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Save a trace file (JSON or YAML)",
		Long: `Save a trace under --id, replacing any trace with that id. Without --id
a new UUID is generated. The id is printed on success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadTrace(cmd, args[0])
			if err != nil {
				return err
			}
			return withStore(func(st *store.Store) error {
				saved, err := st.Save(cmd.Context(), id, sc)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), saved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id to save under (default: new UUID)")
	return cmd
}

func newStoreGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a stored trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				sc, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				body, err := trace.MarshalIndent(sc)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(body)
				return err
			})
		},
	}
}

func newStoreListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored traces, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				recs, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					if recs == nil {
						recs = []store.Record{}
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(recs)
				}
				printRecords(cmd.OutOrStdout(), recs)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func printRecords(w io.Writer, recs []store.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No stored traces")
		return
	}
	table := output.NewStyledTable(w, "ID", "TITLE", "PHASES", "UPDATED")
	for _, r := range recs {
		table.AddRow(
			r.ID,
			output.Truncate(output.FirstLine(r.Title), 48),
			fmt.Sprintf("%d", r.Phases),
			r.UpdatedAt.Local().Format(time.DateTime),
		)
	}
	table.WithFooter(output.CountStr(len(recs), "trace", "traces"))
	table.Render()
}

func newStoreRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"delete"},
		Short:   "Delete stored traces",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func newStoreRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render ID",
		Short: "Render a stored trace as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				sc, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd, opts.output, []byte(renderTrace(newRenderer(), sc, opts)))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.page, "page", false, "wrap the fragment in a standalone HTML document")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: the core goal)")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "emit Markdown instead of HTML")
	return cmd
}
