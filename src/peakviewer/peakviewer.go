// Package peakviewer renders per-peak inspection charts: for one consolidated
// peak, each repeat's chromatogram segment around the peak with the peak's
// retention time marked.
package peakviewer

import (
	"bytes"
	"fmt"
	"image"
	png "image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/chromatogram"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

// MarkerColor is the colour of the retention-time marker line.
var MarkerColor = drawing.ColorFromHex("d62728")

// Options controls peak rendering.
type Options struct {
	// Window is the half-width, in minutes, of the retention-time window
	// drawn around the peak.
	Window float64
	// PanelWidth and PanelHeight size each repeat's panel in pixels.
	PanelWidth  int
	PanelHeight int
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 1.5
	}
	if o.PanelWidth <= 0 {
		o.PanelWidth = 1050
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = 220
	}
	return o
}

// LoadProject reads a .gsmp project file. It is a convenience alias for
// project.Load so viewer callers need only this package.
func LoadProject(path string) (*project.Project, error) {
	return project.Load(path)
}

// Render draws one panel per repeat for the peak whose per-repeat retention
// times (seconds) are given in rtList. rtList must have one entry per repeat;
// NaN marks a repeat the peak was not found in, which still gets a panel but
// no marker. All panels share an x-range covering every marked retention time.
func Render(p *project.Project, rtList []float64, opts Options) (image.Image, error) {
	if len(rtList) != len(p.Repeats) {
		return nil, fmt.Errorf("%d retention times for %d repeats", len(rtList), len(p.Repeats))
	}
	opts = opts.withDefaults()

	minRT, maxRT, ok := windowRange(rtList, opts.Window)
	if !ok {
		return nil, fmt.Errorf("no repeat contains the peak")
	}
	// clamp to the data range so empty margins are not drawn
	dataMin, dataMax := p.RTRange()
	if dataMax > dataMin {
		if minRT < dataMin {
			minRT = dataMin
		}
		if maxRT > dataMax {
			maxRT = dataMax
		}
	}

	panels := make([]image.Image, 0, len(p.Repeats))
	for i := range p.Repeats {
		last := i == len(p.Repeats)-1
		panel, err := renderPanel(&p.Repeats[i], rtList[i], minRT, maxRT, opts, last)
		if err != nil {
			return nil, fmt.Errorf("repeat %s: %w", p.Repeats[i].Name, err)
		}
		panels = append(panels, panel)
	}
	return chromatogram.StackPanels(p.Name, opts.PanelWidth, panels), nil
}

// RenderPeak draws the project's i-th consolidated peak.
func RenderPeak(p *project.Project, index int, opts Options) (image.Image, error) {
	if index < 0 || index >= len(p.ConsolidatedPeaks) {
		return nil, fmt.Errorf("peak index %d out of range (%d peaks)", index, len(p.ConsolidatedPeaks))
	}
	return Render(p, p.ConsolidatedPeaks[index].RTList, opts)
}

// WritePNG renders a peak and encodes it as PNG.
func WritePNG(w io.Writer, p *project.Project, rtList []float64, opts Options) error {
	img, err := Render(p, rtList, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// windowRange returns the shared x-range (minutes) covering every non-NaN
// retention time plus the window margin.
func windowRange(rtList []float64, window float64) (minRT, maxRT float64, ok bool) {
	for _, rt := range rtList {
		if math.IsNaN(rt) {
			continue
		}
		m := rt / 60
		if !ok {
			minRT, maxRT = m, m
			ok = true
			continue
		}
		if m < minRT {
			minRT = m
		}
		if m > maxRT {
			maxRT = m
		}
	}
	if !ok {
		return 0, 0, false
	}
	return minRT - window, maxRT + window, true
}

func renderPanel(r *project.Repeat, rt, minRT, maxRT float64, opts Options, last bool) (image.Image, error) {
	times, intensities := r.Chromatogram.Slice(minRT, maxRT)
	if len(times) == 0 {
		project.Warnf("repeat %s has no data in [%.2f, %.2f] mins; drawing blank panel", r.Name, minRT, maxRT)
		return chromatogram.BlankPanel(opts.PanelWidth, opts.PanelHeight), nil
	}

	xs := make([]float64, len(times))
	for i, t := range times {
		xs[i] = t / 60
	}
	ys := append([]float64(nil), intensities...)
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1.0/60)
		ys = append(ys, ys[0])
	}

	maxY := 1.0
	for _, v := range ys {
		if !math.IsNaN(v) && v > maxY {
			maxY = v
		}
	}

	xAxis := chart.XAxis{
		Range: &chart.ContinuousRange{Min: minRT, Max: maxRT},
		Ticks: chromatogram.RTTicks(minRT, maxRT, 8),
	}
	if last {
		xAxis.Name = "Retention Time (mins)"
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    r.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 1.2,
				StrokeColor: chromatogram.TraceColor,
			},
		},
	}
	if !math.IsNaN(rt) {
		m := rt / 60
		xAxis.GridLines = append(xAxis.GridLines, chart.GridLine{Value: m})
		xAxis.GridMajorStyle = chart.Style{
			StrokeWidth:     1.0,
			StrokeColor:     MarkerColor,
			StrokeDashArray: []float64{4, 3},
		}
		series = append(series, chart.AnnotationSeries{
			Name: "apex",
			Annotations: []chart.Value2{
				{XValue: m, YValue: apexIntensity(xs, ys, m), Label: fmt.Sprintf("%.2f", m)},
			},
			Style: chart.Style{
				FontSize:    8,
				StrokeColor: MarkerColor,
			},
		})
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
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: chromatogram.SciFormatter1DP,
		},
		Series: series,
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

// apexIntensity returns the trace intensity nearest to the marker position so
// the annotation sits on the trace rather than floating at the axis top.
func apexIntensity(xs, ys []float64, m float64) float64 {
	best := 0
	bestD := math.MaxFloat64
	for i, x := range xs {
		d := math.Abs(x - m)
		if d < bestD {
			bestD = d
			best = i
		}
	}
	if len(ys) == 0 {
		return 0
	}
	return ys[best]
}
