// Package chromatogram renders per-repeat total-ion chromatogram charts for a
// project: one panel per repeat, intensity against retention time in minutes,
// all panels sharing the project's retention-time range.
package chromatogram

import (
	"bytes"
	"fmt"
	"image"
	png "image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

// TraceColor is the line colour for chromatogram traces.
var TraceColor = drawing.ColorFromHex("1f77b4")

// Options controls chromatogram rendering.
type Options struct {
	// PanelWidth and PanelHeight size each repeat's panel in pixels.
	PanelWidth  int
	PanelHeight int
	// MinorGridlines adds minor tick gridlines on the retention-time axis.
	MinorGridlines bool
}

func (o Options) withDefaults() Options {
	if o.PanelWidth <= 0 {
		o.PanelWidth = 1170
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = 240
	}
	return o
}

// SciFormatter1DP formats axis values in scientific notation with one decimal
// place ("1.2e+07"). Zero stays "0" to keep the origin readable.
func SciFormatter1DP(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	if f == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1e", f)
}

// Render draws one panel per repeat and stacks them under a title banner.
func Render(p *project.Project, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	minRT, maxRT := p.RTRange()
	panels := make([]image.Image, 0, len(p.Repeats))
	for i := range p.Repeats {
		last := i == len(p.Repeats)-1
		panel, err := renderPanel(&p.Repeats[i], minRT, maxRT, opts, last)
		if err != nil {
			return nil, fmt.Errorf("repeat %s: %w", p.Repeats[i].Name, err)
		}
		panels = append(panels, panel)
	}
	return StackPanels(p.Name, opts.PanelWidth, panels), nil
}

// WritePNG renders the project's chromatograms and encodes them as PNG.
func WritePNG(w io.Writer, p *project.Project, opts Options) error {
	img, err := Render(p, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func renderPanel(r *project.Repeat, minRT, maxRT float64, opts Options, last bool) (image.Image, error) {
	c := &r.Chromatogram
	if c.Len() == 0 {
		project.Warnf("repeat %s has an empty chromatogram; drawing blank panel", r.Name)
		return BlankPanel(opts.PanelWidth, opts.PanelHeight), nil
	}

	xs := make([]float64, c.Len())
	for i, t := range c.Times {
		xs[i] = t / 60
	}
	ys := append([]float64(nil), c.Intensities...)
	// go-chart cannot render a single-point series; pad to two x values.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1.0/60)
		ys = append(ys, ys[0])
	}
	if maxRT <= minRT {
		minRT, maxRT = xs[0], xs[len(xs)-1]
		if maxRT <= minRT {
			maxRT = minRT + 1
		}
	}

	xAxis := chart.XAxis{
		Range: &chart.ContinuousRange{Min: minRT, Max: maxRT},
		Ticks: RTTicks(minRT, maxRT, 10),
	}
	if last {
		xAxis.Name = "Retention Time (mins)"
	}
	if opts.MinorGridlines {
		xAxis.GridLines = MinorRTGridLines(xAxis.Ticks)
		xAxis.GridMinorStyle = MinorGridStyle
		xAxis.GridMajorStyle = chart.Style{Hidden: true}
	}

	ch := chart.Chart{
		Title:  r.Name,
		Width:  opts.PanelWidth,
		Height: opts.PanelHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 24},
		},
		XAxis: xAxis,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: panelYMax(ys)},
			ValueFormatter: SciFormatter1DP,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    r.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 1.2,
					StrokeColor: TraceColor,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// panelYMax picks a y-axis top with a little headroom above the trace.
func panelYMax(ys []float64) float64 {
	max := 0.0
	for _, v := range ys {
		if !math.IsNaN(v) && v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return max * 1.05
}

// RTTicks generates up to n tick marks over [min, max] minutes using nice
// increments (1, 2, 2.5, 5, 10 scaled by powers of ten).
func RTTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatRT(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatRT(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// MinorGridStyle is the style used for minor retention-time gridlines.
var MinorGridStyle = chart.Style{
	StrokeWidth: 1.0,
	StrokeColor: drawing.Color{R: 0, G: 0, B: 0, A: 28},
}

// MinorRTGridLines subdivides each major tick interval into four minor
// gridlines, in the manner of matplotlib's AutoMinorLocator.
func MinorRTGridLines(majors []chart.Tick) []chart.GridLine {
	if len(majors) < 2 {
		return nil
	}
	const subdivisions = 5
	var out []chart.GridLine
	for i := 1; i < len(majors); i++ {
		lo := majors[i-1].Value
		step := (majors[i].Value - lo) / subdivisions
		for j := 1; j < subdivisions; j++ {
			out = append(out, chart.GridLine{IsMinor: true, Value: lo + float64(j)*step})
		}
	}
	return out
}
