package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is one named line of a plot.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions sizes a plot. Zero Width fits the terminal; zero Height uses
// the default.
type PlotOptions struct {
	Width      int
	Height     int
	ForceColor bool
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisHigh          = "hi"
	axisLow           = "lo"
	axisRule          = " ┤"
	ansiReset         = "\x1b[0m"
)

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// Every series after the first is dashed differently so overlapping lines
// stay distinguishable without color.
var seriesDash = []struct {
	name    string
	period  int
	visible int
}{
	{"solid", 1, 1},
	{"dashed", 6, 3},
	{"dotted", 4, 1},
	{"dash-dot", 8, 4},
}

// braille dot bits indexed by [row][column] within a 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// PlotWidthFor returns the drawable width left after the axis labels.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisWidth(), minPlotWidth)
}

func axisWidth() int {
	return max(len(axisHigh), len(axisLow)) + len([]rune(axisRule))
}

// PlotSeries draws series as a braille line chart. Each series is scaled to
// its own range, printed above the chart.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	visible := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			visible = append(visible, s)
		}
	}
	if len(visible) == 0 {
		return nil
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}

	c := newCanvas(width, height, len(visible))
	for i, s := range visible {
		c.trace(i, resample(s.Values, width))
	}

	color := useColor(w, opts.ForceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for _, s := range visible {
		lo, hi := bounds(s.Values)
		fmt.Fprintf(&b, "%s: %.2f .. %.2f\n", s.Name, lo, hi)
	}
	label := max(len(axisHigh), len(axisLow))
	for y := 0; y < height; y++ {
		tick := ""
		switch y {
		case 0:
			tick = axisHigh
		case height - 1:
			tick = axisLow
		}
		fmt.Fprintf(&b, "%*s%s", label, tick, axisRule)
		for x := 0; x < width; x++ {
			r, layer := c.cell(x, y)
			if color && layer >= 0 {
				b.WriteString(seriesColors[layer%len(seriesColors)])
				b.WriteRune(r)
				b.WriteString(ansiReset)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(visible, color))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		dash := seriesDash[i%len(seriesDash)]
		part := fmt.Sprintf("%c %s (%s)", rune(0x2800+int(brailleBits[0][0])), s.Name, dash.name)
		if color {
			part = seriesColors[i%len(seriesColors)] + part + ansiReset
		}
		parts[i] = part
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// canvas holds one braille bitmap per series, width x height cells.
type canvas struct {
	width  int
	height int
	layers [][]uint8
}

func newCanvas(width, height, layers int) *canvas {
	c := &canvas{width: width, height: height, layers: make([][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = make([]uint8, width*height)
	}
	return c
}

// set lights the dot at (x, y) in dot coordinates: 2 per cell across,
// 4 per cell down, origin top-left.
func (c *canvas) set(layer, x, y int) {
	if x < 0 || y < 0 || x >= c.width*2 || y >= c.height*4 {
		return
	}
	c.layers[layer][(y/4)*c.width+x/2] |= brailleBits[y%4][x%2]
}

// trace draws values, already resampled to one per cell column, as a
// connected line scaled to the layer's own range.
func (c *canvas) trace(layer int, values []float64) {
	lo, hi := bounds(values)
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	dots := c.height * 4
	dash := seriesDash[layer%len(seriesDash)]
	plot := func(x, y int) {
		if dash.period <= 1 || x%dash.period < dash.visible {
			c.set(layer, x, y)
		}
	}
	prevX, prevY := -1, 0
	for i, v := range values {
		x := i * 2
		y := clamp(int(math.Round((hi-v)/(hi-lo)*float64(dots-1))), 0, dots-1)
		if prevX < 0 {
			plot(x, y)
		} else {
			segment(prevX, prevY, x, y, plot)
		}
		prevX, prevY = x, y
	}
}

// cell returns the braille rune at (x, y) and the lowest layer drawn there,
// or -1 when the cell is empty.
func (c *canvas) cell(x, y int) (rune, int) {
	var mask uint8
	first := -1
	for i, layer := range c.layers {
		bits := layer[y*c.width+x]
		if bits == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		mask |= bits
	}
	return rune(0x2800 + int(mask)), first
}

// segment walks from (x0, y0) to (x1, y1) in equal steps along the longer axis.
func segment(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		plot(x0, y0)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		plot(x0+int(math.Round(t*float64(dx))), y0+int(math.Round(t*float64(dy))))
	}
}

// resample maps values onto width points: buckets are averaged when
// shrinking and linearly interpolated when stretching.
func resample(values []float64, width int) []float64 {
	n := len(values)
	out := make([]float64, width)
	switch {
	case n == 0:
		return out
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
		return out
	case n >= width:
		for i := range out {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(n-1) / float64(width-1)
		idx := int(pos)
		if idx >= n-1 {
			out[i] = values[n-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx] + (values[idx+1]-values[idx])*frac
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func useColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
