package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsType maps our axis type onto the ECharts axis vocabulary.
func echartsType(a Axis) string {
	if a.Type == "linear" {
		return "value"
	}
	return a.Type
}

// NewLineChart builds the go-echarts line chart for spec. Points are
// [x, y] pairs so the x axis stays numeric.
func NewLineChart(spec Spec) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title(),
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: spec.Title(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.XAxis.Title,
			Type: echartsType(spec.XAxis),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: spec.YAxis.Title,
			Type: echartsType(spec.YAxis),
		}),
	)

	pts := spec.Points()
	data := make([]opts.LineData, len(pts))
	for i, p := range pts {
		data[i] = opts.LineData{Value: []float64{p[0], p[1]}}
	}

	line.AddSeries(spec.DatasetLabel, data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: spec.Color}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: spec.Color}),
	)
	return line
}

// RenderHTML writes a standalone ECharts page for spec to w.
func RenderHTML(spec Spec, w io.Writer) error {
	return NewLineChart(spec).Render(w)
}
