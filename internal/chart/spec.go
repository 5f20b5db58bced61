// Package chart turns a snapshot and a selection into a renderer-neutral
// line chart description, and draws it for the terminal, the browser, and
// PNG export.
package chart

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/Dicklesworthstone/refdash/internal/model"
)

// XAxisTitle labels the horizontal axis of every chart.
const XAxisTitle = "Times"

// Axis describes one chart axis.
type Axis struct {
	Type     string // always "linear"
	Position string // "bottom" or "left"
	Title    string
}

// Spec is everything a renderer needs to draw the selected metric.
type Spec struct {
	Metric       string
	Labels       []float64 // x values, the series times
	Values       []float64 // y values
	DatasetLabel string
	Color        string // #rrggbb
	XAxis        Axis
	YAxis        Axis
}

// Title is the heading shown above the chart.
func (s Spec) Title() string { return "Line Graph for " + s.Metric }

// Empty reports whether there is nothing to plot.
func (s Spec) Empty() bool { return len(s.Values) == 0 }

// Points pairs labels with values, truncated to the shorter of the two.
func (s Spec) Points() [][2]float64 {
	n := min(len(s.Labels), len(s.Values))
	pts := make([][2]float64, n)
	for i := 0; i < n; i++ {
		pts[i] = [2]float64{s.Labels[i], s.Values[i]}
	}
	return pts
}

// ColorFunc picks the line color for a metric.
type ColorFunc func(metric string) string

// RandomColor returns a uniformly random 24-bit color on every call,
// regardless of metric.
func RandomColor(string) string {
	return fmt.Sprintf("#%06x", rand.Intn(1<<24))
}

// palette is a set of colors readable on both dark terminals and white pages.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#17becf", "#bcbd22", "#7f7f7f",
}

// StableColor maps a metric name to a fixed palette entry.
func StableColor(metric string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(metric))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Colors returns StableColor when stable is set, RandomColor otherwise.
func Colors(stable bool) ColorFunc {
	if stable {
		return StableColor
	}
	return RandomColor
}

// Build derives the chart for selected from snap. The last visible series
// with that name is plotted; with no match the label and value sequences
// are empty. Dataset label and y-axis title always carry the selection.
func Build(snap model.Snapshot, selected string, color ColorFunc) Spec {
	if color == nil {
		color = RandomColor
	}
	spec := Spec{
		Metric:       selected,
		Labels:       []float64{},
		Values:       []float64{},
		DatasetLabel: selected,
		Color:        color(selected),
		XAxis:        Axis{Type: "linear", Position: "bottom", Title: XAxisTitle},
		YAxis:        Axis{Type: "linear", Position: "left", Title: selected},
	}
	if series, ok := snap.Lookup(selected); ok {
		if series.Times != nil {
			spec.Labels = series.Times
		}
		spec.Values = series.Values
	}
	return spec
}
