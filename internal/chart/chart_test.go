package chart

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/model"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func snapshot() model.Snapshot {
	return model.Snapshot{
		Group:  "TK1",
		Loaded: true,
		Series: []model.MetricSeries{
			{Metric: "TK1_temp", Times: []float64{1, 2, 3}, Values: []float64{10, 20, 30}},
			{Metric: "TK1_empty", Times: []float64{}, Values: []float64{}},
		},
	}
}

func fixed(string) string { return "#123456" }

func TestBuild_SelectedMetric(t *testing.T) {
	spec := Build(snapshot(), "TK1_temp", fixed)

	assert.Equal(t, "TK1_temp", spec.Metric)
	assert.Equal(t, "TK1_temp", spec.DatasetLabel)
	assert.Equal(t, "TK1_temp", spec.YAxis.Title)
	assert.Equal(t, []float64{1, 2, 3}, spec.Labels)
	assert.Equal(t, []float64{10, 20, 30}, spec.Values)
	assert.Equal(t, "#123456", spec.Color)
	assert.Equal(t, "Line Graph for TK1_temp", spec.Title())
	assert.False(t, spec.Empty())
}

func TestBuild_Axes(t *testing.T) {
	spec := Build(snapshot(), "TK1_temp", fixed)

	assert.Equal(t, Axis{Type: "linear", Position: "bottom", Title: "Times"}, spec.XAxis)
	assert.Equal(t, Axis{Type: "linear", Position: "left", Title: "TK1_temp"}, spec.YAxis)
}

func TestBuild_NoMatchGivesEmptySequences(t *testing.T) {
	tests := []struct {
		name     string
		snap     model.Snapshot
		selected string
	}{
		{"unknown metric", snapshot(), "TK1_missing"},
		{"nothing selected", snapshot(), ""},
		{"empty series", snapshot(), "TK1_empty"},
		{"not loaded", model.Zero(), "TK1_temp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Build(tt.snap, tt.selected, fixed)
			require.NotNil(t, spec.Labels)
			require.NotNil(t, spec.Values)
			assert.Empty(t, spec.Labels)
			assert.Empty(t, spec.Values)
			assert.True(t, spec.Empty())
			assert.Equal(t, tt.selected, spec.YAxis.Title)
			assert.Equal(t, tt.selected, spec.DatasetLabel)
		})
	}
}

func TestBuild_LastMatchWins(t *testing.T) {
	snap := snapshot()
	snap.Series = append(snap.Series, model.MetricSeries{
		Metric: "TK1_temp", Times: []float64{7}, Values: []float64{70},
	})

	spec := Build(snap, "TK1_temp", fixed)
	assert.Equal(t, []float64{7}, spec.Labels)
	assert.Equal(t, []float64{70}, spec.Values)
}

func TestBuild_NilColorFallsBackToRandom(t *testing.T) {
	spec := Build(snapshot(), "TK1_temp", nil)
	assert.Regexp(t, hexColor, spec.Color)
}

func TestPoints_TruncatesToShorter(t *testing.T) {
	spec := Spec{Labels: []float64{1, 2, 3}, Values: []float64{5, 6}}
	assert.Equal(t, [][2]float64{{1, 5}, {2, 6}}, spec.Points())
}

func TestRandomColor_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		assert.Regexp(t, hexColor, RandomColor("TK1_temp"))
	}
}

func TestStableColor(t *testing.T) {
	a := StableColor("TK1_temp")
	assert.Equal(t, a, StableColor("TK1_temp"))
	assert.Contains(t, palette, a)
	assert.Regexp(t, hexColor, a)
}

func TestColors(t *testing.T) {
	assert.Equal(t, StableColor("x"), Colors(true)("x"))
	assert.Regexp(t, hexColor, Colors(false)("x"))
}

func TestRenderTerminal(t *testing.T) {
	spec := Build(snapshot(), "TK1_temp", fixed)
	out := RenderTerminal(spec, 20, 4)

	assert.Contains(t, out, "TK1_temp")
	assert.Contains(t, out, "Times")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "┤")
	assert.Contains(t, out, "└")

	// at least one braille dot was lit
	lit := false
	for _, r := range out {
		if r > brailleBase && r <= brailleBase+0xff {
			lit = true
			break
		}
	}
	assert.True(t, lit, "expected plotted dots in:\n%s", out)
}

func TestRenderTerminal_Empty(t *testing.T) {
	out := RenderTerminal(Build(snapshot(), "TK1_missing", fixed), 20, 4)
	assert.Contains(t, out, "no data to plot")
}

func TestRenderTerminal_SinglePoint(t *testing.T) {
	spec := Spec{Labels: []float64{1}, Values: []float64{5}, Color: "#ffffff",
		XAxis: Axis{Title: "Times"}, YAxis: Axis{Title: "m"}}
	assert.NotPanics(t, func() {
		out := RenderTerminal(spec, 10, 3)
		assert.Contains(t, out, "5")
	})
}

func TestPlotGrid_Line(t *testing.T) {
	g := newPlotGrid(2, 1)
	g.line(0, 0, 3, 3)

	rows := g.rows()
	require.Len(t, rows, 1)
	// both cells have dots on the diagonal
	for _, r := range rows[0] {
		assert.NotEqual(t, rune(brailleBase), r)
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(Build(snapshot(), "TK1_temp", fixed), &buf))

	out := buf.String()
	assert.Contains(t, out, "Line Graph for TK1_temp")
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "Times")
	assert.Contains(t, out, "#123456")
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(Build(snapshot(), "TK1_temp", fixed), 400, 300, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderPNG_FlatValues(t *testing.T) {
	spec := Spec{Metric: "m", Labels: []float64{1, 2}, Values: []float64{4, 4}, Color: "#000000"}
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(spec, 400, 300, &buf))
}

func TestRenderPNG_TooFewPoints(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"empty", Build(snapshot(), "TK1_missing", fixed)},
		{"single", Spec{Metric: "m", Labels: []float64{1}, Values: []float64{1}}},
		{"same time", Spec{Metric: "m", Labels: []float64{1, 1}, Values: []float64{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := RenderPNG(tt.spec, 400, 300, &buf)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrRender))
			assert.True(t, strings.HasPrefix(err.Error(), "✗"))
		})
	}
}
