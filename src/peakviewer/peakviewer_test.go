package peakviewer

import (
	"bytes"
	png "image/png"
	"math"
	"testing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

func peakProject() *project.Project {
	gaussian := func(start float64, n int, apex float64) project.Chromatogram {
		times := make([]float64, n)
		ints := make([]float64, n)
		for i := range times {
			t := start + float64(i)
			times[i] = t
			d := (t - apex) / 8
			ints[i] = 1e4 + 1e6*math.Exp(-d*d)
		}
		return project.Chromatogram{Times: times, Intensities: ints}
	}
	return &project.Project{
		Name: "Eley Hymax",
		Repeats: []project.Repeat{
			{Name: "r1", Chromatogram: gaussian(120, 800, 420)},
			{Name: "r2", Chromatogram: gaussian(120, 800, 423)},
			{Name: "r3", Chromatogram: gaussian(120, 800, 418)},
		},
		ConsolidatedPeaks: []project.ConsolidatedPeak{
			{RT: 420, RTList: project.FloatList{420, 423, 418}, AreaList: project.FloatList{1e7, 1.1e7, 0.9e7}},
			{RT: 500, RTList: project.FloatList{500, math.NaN(), 502}, AreaList: project.FloatList{2e7, math.NaN(), 2.2e7}},
		},
	}
}

func TestRender_PanelPerRepeat(t *testing.T) {
	p := peakProject()
	img, err := Render(p, p.ConsolidatedPeaks[0].RTList, Options{PanelWidth: 600, PanelHeight: 180})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dx() != 600 {
		t.Fatalf("width = %d, want 600", img.Bounds().Dx())
	}
	if img.Bounds().Dy() <= 3*180 {
		t.Fatalf("height = %d, want at least three panels plus banner", img.Bounds().Dy())
	}
}

func TestRender_MissingRepeatStillGetsPanel(t *testing.T) {
	p := peakProject()
	// Peak 1 is absent from repeat 2 (NaN RT) but the panel count must not change.
	img, err := Render(p, p.ConsolidatedPeaks[1].RTList, Options{PanelWidth: 500, PanelHeight: 150})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dy() <= 3*150 {
		t.Fatalf("height = %d, want three panels", img.Bounds().Dy())
	}
}

func TestRender_RTListLengthMismatch(t *testing.T) {
	p := peakProject()
	if _, err := Render(p, []float64{420}, Options{}); err == nil {
		t.Fatal("expected error for mismatched rt list")
	}
}

func TestRender_AllNaN(t *testing.T) {
	p := peakProject()
	nan := math.NaN()
	if _, err := Render(p, []float64{nan, nan, nan}, Options{}); err == nil {
		t.Fatal("expected error when no repeat contains the peak")
	}
}

func TestRenderPeak_IndexBounds(t *testing.T) {
	p := peakProject()
	if _, err := RenderPeak(p, 5, Options{}); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if _, err := RenderPeak(p, 0, Options{PanelWidth: 400, PanelHeight: 120}); err != nil {
		t.Fatalf("RenderPeak: %v", err)
	}
}

func TestWritePNG_Decodable(t *testing.T) {
	p := peakProject()
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, p.ConsolidatedPeaks[0].RTList, Options{PanelWidth: 500, PanelHeight: 140}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestWindowRange(t *testing.T) {
	minRT, maxRT, ok := windowRange([]float64{420, math.NaN(), 480}, 1.5)
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(minRT-(7-1.5)) > 1e-9 || math.Abs(maxRT-(8+1.5)) > 1e-9 {
		t.Fatalf("window = [%v, %v], want [5.5, 9.5]", minRT, maxRT)
	}
}
