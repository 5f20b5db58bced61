package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/refdash/internal/model"
)

// Braille cells are 2 dots wide and 4 dots tall. Unicode braille starts at
// U+2800 and each dot is one bit of the offset.
const brailleBase = '\u2800'

// brailleDots maps [row][col] inside a cell to the bit for that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

var (
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
)

// bounds returns min and max of vals, widening a flat range so it can be
// scaled.
func bounds(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

// scale maps v in [lo, hi] onto [0, n-1].
func scale(v, lo, hi float64, n int) int {
	p := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	if p < 0 {
		return 0
	}
	if p > n-1 {
		return n - 1
	}
	return p
}

// plotGrid is a dot canvas backed by braille cells.
type plotGrid struct {
	cells  [][]uint8
	width  int // cells
	height int // cells
}

func newPlotGrid(width, height int) *plotGrid {
	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}
	return &plotGrid{cells: cells, width: width, height: height}
}

// set lights dot (x, y) where y=0 is the bottom row.
func (g *plotGrid) set(x, y int) {
	row := g.height*4 - 1 - y
	cy, cx := row/4, x/2
	if cy < 0 || cy >= g.height || cx < 0 || cx >= g.width {
		return
	}
	g.cells[cy][cx] |= 1 << brailleDots[row%4][x%2]
}

// line draws between two dots with Bresenham's algorithm.
func (g *plotGrid) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		g.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (g *plotGrid) rows() []string {
	out := make([]string, g.height)
	for i, r := range g.cells {
		var b strings.Builder
		for _, c := range r {
			b.WriteRune(brailleBase + rune(c))
		}
		out[i] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RenderTerminal draws spec as a braille line plot of width x height cells,
// framed with y labels on the left and the x range underneath.
func RenderTerminal(spec Spec, width, height int) string {
	header := titleStyle.Render(spec.YAxis.Title)
	pts := spec.Points()
	if len(pts) == 0 || width <= 0 || height <= 0 {
		return header + "\n" + axisStyle.Render("no data to plot")
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p[0], p[1]
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)

	g := newPlotGrid(width, height)
	dotsW, dotsH := width*2, height*4
	px, py := scale(xs[0], xlo, xhi, dotsW), scale(ys[0], ylo, yhi, dotsH)
	g.set(px, py)
	for i := 1; i < len(pts); i++ {
		nx, ny := scale(xs[i], xlo, xhi, dotsW), scale(ys[i], ylo, yhi, dotsH)
		g.line(px, py, nx, ny)
		px, py = nx, ny
	}

	top, bottom := model.FormatNumber(maxOf(ys)), model.FormatNumber(minOf(ys))
	gutter := max(len(top), len(bottom))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(spec.Color))

	var b strings.Builder
	b.WriteString(header + "\n")
	for i, r := range g.rows() {
		label := ""
		switch i {
		case 0:
			label = top
		case height - 1:
			label = bottom
		}
		b.WriteString(axisStyle.Render(padLeft(label, gutter)+" ┤") + lineStyle.Render(r) + "\n")
	}
	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutter) + " └" + strings.Repeat("─", width)))
	b.WriteString("\n")

	left, right := model.FormatNumber(minOf(xs)), model.FormatNumber(maxOf(xs))
	span := width - len(left) - len(right)
	if span < 1 {
		span = 1
	}
	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutter+2) + left + strings.Repeat(" ", span) + right))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutter+2) + center(spec.XAxis.Title, width)))
	return b.String()
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = math.Max(m, x)
	}
	return m
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}

func center(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", (n-len(s))/2) + s
}
