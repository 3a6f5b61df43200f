package cli

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tracerender/internal/config"
	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr        string
		noStore     bool
		watchConfig bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Start an HTTP server with the following routes:

  GET    /health            liveness check
  POST   /render            render a posted trace (?page=1 for a full document)
  GET    /traces            list stored traces
  POST   /traces            store a posted trace (?id= to choose the id)
  GET    /traces/:id        stored trace as JSON
  GET    /traces/:id/html   stored trace rendered
  DELETE /traces/:id        delete a stored trace

Traces may be posted as JSON or, with a YAML content type, as YAML.
The /traces routes are disabled with --no-store. With --watch-config the
[render] settings are reloaded when the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := currentConfig()
			if addr == "" {
				addr = c.Server.Addr
			}
			if !verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			logger := slog.Default().With("component", "server")
			var h *server.Handler
			if noStore {
				h = server.NewHandler(newRenderer(), nil, logger)
			} else {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				h = server.NewHandler(newRenderer(), st, logger)
			}

			if watchConfig {
				stop, err := config.Watch(cmd.Context(), configPath(), func(c *config.Config) {
					h.SetRenderer(render.New(c.RenderOptions()))
				})
				if err != nil {
					return err
				}
				defer stop()
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s (Ctrl-C to stop)\n", addr)
			return server.Run(cmd.Context(), addr, h)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8765)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the /traces routes")
	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload render settings when the config file changes")
	return cmd
}
