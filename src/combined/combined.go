// Package combined draws the combined "chromatogram" for a project: a bar
// chart of consolidated peak area (or height) against retention time, styled
// like a chromatogram, with error bars spanning the repeat-to-repeat spread.
package combined

import (
	"bytes"
	"fmt"
	"image"
	png "image/png"
	"io"
	"math"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/chromatogram"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

// Peak is the plotted data for one consolidated peak.
type Peak struct {
	// AreaOrHeight is the bar value: the mean (or median) of the per-repeat
	// peak areas, or peak heights when height mode is selected.
	AreaOrHeight float64
	// AreaOrHeightList holds the per-repeat values behind the statistic.
	AreaOrHeightList []float64
	// RT is the mean retention time in minutes.
	RT float64
	// RTList holds the per-repeat retention times in seconds.
	RTList []float64
	// ErrLow and ErrHigh are the error-bar extents below and above the bar
	// value: one standard deviation each in mean mode, the distances to the
	// 25th and 75th percentiles in median mode.
	ErrLow  float64
	ErrHigh float64
	// Hit is the name of the peak's best library hit, empty when the peak
	// has no identifications.
	Hit string
}

// Options controls the combined chromatogram.
type Options struct {
	// TopNPeaks keeps only the n largest peaks (0 keeps all).
	TopNPeaks int
	// MinArea drops peaks whose displayed statistic falls below it.
	MinArea float64
	// UseMedian plots the median and inter-quartile range rather than the
	// mean and standard deviation.
	UseMedian bool
	// UsePeakHeight plots the peak height instead of the peak area.
	UsePeakHeight bool
	// ShowPoints overlays the individual per-repeat values as crosses.
	ShowPoints bool
	// AnnotateTopN labels the n largest displayed peaks with their best
	// library hit (0 disables annotation).
	AnnotateTopN int

	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1170
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	return o
}

// PeakData computes the plotted statistics for one consolidated peak.
func PeakData(cp *project.ConsolidatedPeak, useMedian, usePeakHeight bool) Peak {
	var values []float64
	if usePeakHeight {
		values = make([]float64, len(cp.RTList))
		for i := range values {
			if i < len(cp.Spectra) {
				values[i] = cp.Spectra[i].HeightSum()
			} else {
				values[i] = math.NaN()
			}
		}
	} else {
		values = append([]float64(nil), cp.AreaList...)
	}

	pk := Peak{
		AreaOrHeightList: values,
		RT:               cp.RT / 60,
		RTList:           append([]float64(nil), cp.RTList...),
		Hit:              cp.BestHit(),
	}
	if useMedian {
		med := nanMedian(values)
		pk.AreaOrHeight = med
		pk.ErrLow = med - nanPercentile(values, 25)
		pk.ErrHigh = nanPercentile(values, 75) - med
	} else {
		pk.AreaOrHeight = nanMean(values)
		sd := nanStd(values)
		pk.ErrLow = sd
		pk.ErrHigh = sd
	}
	return pk
}

// Data returns the peaks to plot, after the threshold and top-N filters.
// Peaks whose statistic is NaN (not found in any repeat in the selected mode)
// are dropped.
func Data(p *project.Project, opts Options) []Peak {
	peaks := make([]Peak, 0, len(p.ConsolidatedPeaks))
	for i := range p.ConsolidatedPeaks {
		pk := PeakData(&p.ConsolidatedPeaks[i], opts.UseMedian, opts.UsePeakHeight)
		if math.IsNaN(pk.AreaOrHeight) {
			project.Warnf("consolidated peak %d has no values in the selected mode; skipping", i)
			continue
		}
		if pk.AreaOrHeight < opts.MinArea {
			continue
		}
		peaks = append(peaks, pk)
	}

	if opts.TopNPeaks > 0 && len(peaks) > opts.TopNPeaks {
		sort.Slice(peaks, func(i, j int) bool { return peaks[i].AreaOrHeight > peaks[j].AreaOrHeight })
		peaks = peaks[:opts.TopNPeaks]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].RT < peaks[j].RT })
	return peaks
}

// YLabel returns the y-axis label for the selected statistic.
func YLabel(useMedian, usePeakHeight bool) string {
	switch {
	case usePeakHeight && useMedian:
		return "Median Peak Height"
	case usePeakHeight:
		return "Mean Peak Height"
	case useMedian:
		return "Median Peak Area"
	default:
		return "Mean Peak Area"
	}
}

// Render draws the combined chromatogram for the project.
func Render(p *project.Project, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	peaks := Data(p, opts)
	ch := buildChart(p, peaks, opts)

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render combined chromatogram: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode combined chromatogram: %w", err)
	}
	return img, nil
}

// WritePNG renders the combined chromatogram and encodes it as PNG.
func WritePNG(w io.Writer, p *project.Project, opts Options) error {
	opts = opts.withDefaults()
	peaks := Data(p, opts)
	return buildChart(p, peaks, opts).Render(chart.PNG, w)
}

func buildChart(p *project.Project, peaks []Peak, opts Options) chart.Chart {
	minRT, maxRT := p.RTRange()
	if maxRT <= minRT && len(peaks) > 0 {
		// fall back to the peak span so an axis can still be drawn
		minRT = peaks[0].RT
		maxRT = peaks[len(peaks)-1].RT
	}
	if maxRT <= minRT {
		maxRT = minRT + 1
	}

	maxY := 1.0
	for _, pk := range peaks {
		top := pk.AreaOrHeight
		if countNonNaN(pk.AreaOrHeightList) > 1 {
			top += pk.ErrHigh
		}
		if opts.ShowPoints {
			for _, v := range pk.AreaOrHeightList {
				if !math.IsNaN(v) && v > top {
					top = v
				}
			}
		}
		if top > maxY {
			maxY = top
		}
	}

	xTicks := chromatogram.RTTicks(minRT, maxRT, 10)
	series := []chart.Series{
		barSeries{name: "peaks", peaks: peaks, halfWidth: 0.1},
		errorBarSeries{name: "spread", peaks: peaks},
	}
	if opts.ShowPoints {
		series = append(series, pointSeries{name: "repeats", peaks: peaks})
	}
	if opts.AnnotateTopN > 0 {
		series = append(series, annotationSeries(peaks, opts.AnnotateTopN))
	}

	return chart.Chart{
		Title:  p.Name,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 32},
		},
		XAxis: chart.XAxis{
			Name:           "Retention Time (mins)",
			Range:          &chart.ContinuousRange{Min: minRT, Max: maxRT},
			Ticks:          xTicks,
			GridLines:      chromatogram.MinorRTGridLines(xTicks),
			GridMinorStyle: chromatogram.MinorGridStyle,
			GridMajorStyle: chart.Style{Hidden: true},
		},
		YAxis: chart.YAxis{
			Name:           YLabel(opts.UseMedian, opts.UsePeakHeight),
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.05},
			ValueFormatter: chromatogram.SciFormatter1DP,
		},
		Series: series,
	}
}

// annotationSeries labels the n largest displayed peaks with their best hit.
func annotationSeries(peaks []Peak, topN int) chart.AnnotationSeries {
	idx := make([]int, len(peaks))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return peaks[idx[a]].AreaOrHeight > peaks[idx[b]].AreaOrHeight })
	if topN < len(idx) {
		idx = idx[:topN]
	}

	var annotations []chart.Value2
	for _, i := range idx {
		name := peaks[i].Hit
		if name == "" {
			continue
		}
		annotations = append(annotations, chart.Value2{
			XValue: peaks[i].RT,
			YValue: peaks[i].AreaOrHeight,
			Label:  name,
		})
	}
	return chart.AnnotationSeries{
		Name:        "hits",
		Annotations: annotations,
		Style: chart.Style{
			FontSize:    8,
			StrokeColor: chart.ColorAlternateGray,
		},
	}
}
