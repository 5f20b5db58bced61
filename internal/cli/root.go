// Package cli defines the refdash command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
	"github.com/Dicklesworthstone/refdash/internal/logger"
	"github.com/Dicklesworthstone/refdash/internal/model"
	"github.com/Dicklesworthstone/refdash/internal/ui"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "refdash",
	Short: "Terminal and browser dashboard for reference sensor metrics",
	Long: `refdash fetches the reference metrics document once, lists the latest
value of every metric in the configured group, and plots the metric you pick.

Examples:
  refdash
  refdash --json
  refdash --stable-colors --log-file /tmp/refdash.log
  refdash serve --listen :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if jsonOutput {
			return jsonCommand(cmd.Context(), cfg, cmd.OutOrStdout())
		}
		return dashboardCommand(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	config.AddFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "fetch once, print the snapshot as JSON and exit")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimRight(err.Error(), "\n"))
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, cmd.Flags())
}

// newLogger opens the diagnostic channel. The terminal dashboard owns the
// screen, so without a log file its diagnostics are discarded.
func newLogger(cfg *config.Config, component string, interactive bool) (logger.Logger, func(), error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot open log file "+cfg.Log.File,
				"Check the directory exists and is writable")
		}
		return logger.New(f, cfg.Log.Level, component), func() { _ = f.Close() }, nil
	}
	if interactive {
		return logger.New(io.Discard, cfg.Log.Level, component), func() {}, nil
	}
	return logger.NewConsole(os.Stderr, cfg.Log.Level, component), func() {}, nil
}

// dashboardCommand runs the interactive terminal dashboard.
func dashboardCommand(cfg *config.Config) error {
	log, closeLog, err := newLogger(cfg, "ui", true)
	if err != nil {
		return err
	}
	defer closeLog()

	return ui.RunTUI(*cfg, fetcher.New(*cfg, log), log)
}

// jsonCommand fetches once and writes the report to w.
func jsonCommand(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log, closeLog, err := newLogger(cfg, "fetcher", false)
	if err != nil {
		return err
	}
	defer closeLog()

	return writeReport(ctx, fetcher.New(*cfg, log), w)
}

func writeReport(ctx context.Context, src fetcher.Source, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	snap, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(model.NewReport(snap))
}
