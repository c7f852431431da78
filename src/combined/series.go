package combined

import (
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// barPalette cycles per peak so adjacent bars stay distinguishable.
var barPalette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

var errorBarColor = drawing.ColorFromHex("a9a9a9")

func peakColor(i int) drawing.Color { return barPalette[i%len(barPalette)] }

// barSeries draws one bar per consolidated peak at its mean retention time.
// go-chart's own histogram series sizes bars from point spacing, which is
// wrong for irregularly spaced peaks, so the bars are drawn directly.
type barSeries struct {
	name      string
	peaks     []Peak
	halfWidth float64 // minutes
}

func (bs barSeries) GetName() string            { return bs.name }
func (bs barSeries) GetYAxis() chart.YAxisType  { return chart.YAxisPrimary }
func (bs barSeries) GetStyle() chart.Style      { return chart.Style{} }
func (bs barSeries) Len() int                   { return len(bs.peaks) }
func (bs barSeries) GetValues(i int) (float64, float64) {
	return bs.peaks[i].RT, bs.peaks[i].AreaOrHeight
}

func (bs barSeries) Validate() error {
	if bs.halfWidth <= 0 {
		return errors.New("bar series needs a positive half width")
	}
	return nil
}

func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	// Larger values sit at smaller y: go-chart's drawing convention is
	// canvasBox.Bottom - yrange.Translate(v).
	zero := canvasBox.Bottom - yrange.Translate(0)
	if zero > canvasBox.Bottom {
		zero = canvasBox.Bottom
	}
	for i, pk := range bs.peaks {
		left := canvasBox.Left + xrange.Translate(pk.RT-bs.halfWidth)
		right := canvasBox.Left + xrange.Translate(pk.RT+bs.halfWidth)
		if right <= left {
			right = left + 1
		}
		top := canvasBox.Bottom - yrange.Translate(pk.AreaOrHeight)
		if top >= zero {
			continue
		}
		col := peakColor(i)
		chart.Draw.Box(r, chart.Box{Top: top, Left: left, Right: right, Bottom: zero}, chart.Style{
			FillColor:   col,
			StrokeColor: col,
			StrokeWidth: 1,
		})
	}
}

// errorBarSeries draws capped vertical error bars over the bars. A peak only
// gets an error bar when more than one repeat contributed a value.
type errorBarSeries struct {
	name  string
	peaks []Peak
}

func (es errorBarSeries) GetName() string           { return es.name }
func (es errorBarSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (es errorBarSeries) GetStyle() chart.Style     { return chart.Style{} }
func (es errorBarSeries) Validate() error           { return nil }

const errorBarCapHalfWidth = 5 // pixels

func (es errorBarSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	r.SetStrokeColor(errorBarColor)
	r.SetStrokeWidth(1.5)
	for _, pk := range es.peaks {
		if countNonNaN(pk.AreaOrHeightList) < 2 {
			continue
		}
		if math.IsNaN(pk.ErrLow) || math.IsNaN(pk.ErrHigh) {
			continue
		}
		x := canvasBox.Left + xrange.Translate(pk.RT)
		lo := pk.AreaOrHeight - pk.ErrLow
		if lo < 0 {
			lo = 0
		}
		yLo := canvasBox.Bottom - yrange.Translate(lo)
		yHi := canvasBox.Bottom - yrange.Translate(pk.AreaOrHeight+pk.ErrHigh)
		r.MoveTo(x, yLo)
		r.LineTo(x, yHi)
		r.Stroke()
		for _, y := range []int{yLo, yHi} {
			r.MoveTo(x-errorBarCapHalfWidth, y)
			r.LineTo(x+errorBarCapHalfWidth, y)
			r.Stroke()
		}
	}
}

// pointSeries marks the individual per-repeat values with crosses matching
// the bar colour.
type pointSeries struct {
	name  string
	peaks []Peak
}

func (ps pointSeries) GetName() string           { return ps.name }
func (ps pointSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (ps pointSeries) GetStyle() chart.Style     { return chart.Style{} }
func (ps pointSeries) Validate() error           { return nil }

const crossHalfWidth = 4 // pixels

func (ps pointSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	r.SetStrokeWidth(1.5)
	for i, pk := range ps.peaks {
		r.SetStrokeColor(peakColor(i))
		for j, rt := range pk.RTList {
			if j >= len(pk.AreaOrHeightList) {
				break
			}
			v := pk.AreaOrHeightList[j]
			if math.IsNaN(rt) || math.IsNaN(v) {
				continue
			}
			x := canvasBox.Left + xrange.Translate(rt/60)
			y := canvasBox.Bottom - yrange.Translate(v)
			r.MoveTo(x-crossHalfWidth, y-crossHalfWidth)
			r.LineTo(x+crossHalfWidth, y+crossHalfWidth)
			r.Stroke()
			r.MoveTo(x-crossHalfWidth, y+crossHalfWidth)
			r.LineTo(x+crossHalfWidth, y-crossHalfWidth)
			r.Stroke()
		}
	}
}

var (
	_ chart.Series = barSeries{}
	_ chart.Series = errorBarSeries{}
	_ chart.Series = pointSeries{}
)
