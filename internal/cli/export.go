package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/refdash/internal/chart"
	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
)

var (
	exportMetric string
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one metric's chart to a PNG or HTML file",
	Long: `Fetch the metrics once and write the chart for --metric to --out.
The format follows the file extension unless --format is given; use
--out - to write to stdout.

Examples:
  refdash export --metric TK1_temp --out temp.png
  refdash export --metric TK1_temp --out temp.html
  refdash export --metric TK1_temp --format png --out - > temp.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := exportFormatFor(exportFormat, exportOut)
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, "export", false)
		if err != nil {
			return err
		}
		defer closeLog()

		var buf bytes.Buffer
		if err := exportChart(cmdContext(cmd), cfg, fetcher.New(*cfg, log), exportMetric, format, &buf); err != nil {
			return err
		}
		if exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
			return errors.WrapWithCode(err, errors.ErrRender,
				"Cannot write "+exportOut, "Check the directory exists and is writable")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportMetric, "metric", "", "metric to plot (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file, or - for stdout (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "png or html (default: from --out extension)")
	d := config.Default()
	exportCmd.Flags().Int("width", d.Chart.Width, "image width in pixels")
	exportCmd.Flags().Int("height", d.Chart.Height, "image height in pixels")
	_ = exportCmd.MarkFlagRequired("metric")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

// exportFormatFor resolves the output format from the flag or file extension.
func exportFormatFor(flag, out string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	switch format {
	case "png":
		return "png", nil
	case "html", "htm":
		return "html", nil
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("Cannot tell the export format for '%s'", out),
		"Use a .png or .html file name, or pass --format png|html")
}

// exportChart fetches once and renders metric in format to w. A metric with
// no readings is an error here, unlike in the dashboards.
func exportChart(ctx context.Context, cfg *config.Config, src fetcher.Source, metric, format string, w io.Writer) error {
	snap, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Lookup(metric); !ok {
		return errors.New(errors.ErrRender,
			fmt.Sprintf("No readings for '%s'", metric),
			"Run 'refdash --json' to list the available metrics")
	}

	spec := chart.Build(snap, metric, chart.Colors(cfg.Chart.StableColors))
	if format == "html" {
		return chart.RenderHTML(spec, w)
	}
	return chart.RenderPNG(spec, cfg.Chart.Width, cfg.Chart.Height, w)
}
