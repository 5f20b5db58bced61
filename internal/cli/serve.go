package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
	"github.com/Dicklesworthstone/refdash/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard to a browser",
	Long: `Serve the dashboard over HTTP. Every page load fetches the metrics once
and renders the table, the metric selector, and the chart for ?metric=.

Routes:
  /               dashboard page
  /chart          chart page for ?metric=
  /chart.png      chart image for ?metric=
  /api/snapshot   normalized snapshot as JSON
  /healthz        liveness probe

Examples:
  refdash serve
  refdash serve --listen 127.0.0.1:9000 --stable-colors`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, "serve", false)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.NewServer(*cfg, fetcher.New(*cfg, log), log)
		return srv.ListenAndServe(ctx, cfg.Serve.Listen)
	},
}

func init() {
	serveCmd.Flags().String("listen", config.Default().Serve.Listen, "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
