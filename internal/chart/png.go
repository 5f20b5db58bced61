package chart

import (
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Dicklesworthstone/refdash/internal/errors"
)

// NewImageChart builds the go-chart definition for spec at the given size.
func NewImageChart(spec Spec, width, height int) gochart.Chart {
	pts := spec.Points()
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p[0], p[1]
	}

	ch := gochart.Chart{
		Title:      spec.Title(),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: spec.XAxis.Title},
		YAxis:      gochart.YAxis{Name: spec.YAxis.Title},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    spec.DatasetLabel,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(spec.Color, "#")),
					StrokeWidth: 2,
				},
			},
		},
	}
	if len(ys) > 0 && minOf(ys) == maxOf(ys) {
		lo, hi := bounds(ys)
		ch.YAxis.Range = &gochart.ContinuousRange{Min: lo, Max: hi}
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch
}

// RenderPNG writes spec as a PNG image. go-chart cannot scale a range
// narrower than two distinct x values, so such series are rejected.
func RenderPNG(spec Spec, width, height int, w io.Writer) error {
	pts := spec.Points()
	if len(pts) < 2 {
		return errors.New(errors.ErrRender,
			"Not enough points to draw "+spec.Metric,
			"Image export needs at least two readings")
	}
	flat := true
	for _, p := range pts[1:] {
		if p[0] != pts[0][0] {
			flat = false
			break
		}
	}
	if flat {
		return errors.New(errors.ErrRender,
			"All readings of "+spec.Metric+" share one timestamp",
			"Image export needs at least two distinct times")
	}

	ch := NewImageChart(spec, width, height)
	if err := ch.Render(gochart.PNG, w); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Rendering chart for "+spec.Metric+" failed", "")
	}
	return nil
}
