package project

import (
	"math"
	"testing"
)

func linspace(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func testProject() *Project {
	// Three repeats covering slightly different retention windows (seconds).
	return &Project{
		Name: "Eley Hymax",
		Repeats: []Repeat{
			{Name: "Hymax-1", Chromatogram: Chromatogram{Times: linspace(180, 1, 600), Intensities: linspace(0, 10, 600)}},
			{Name: "Hymax-2", Chromatogram: Chromatogram{Times: linspace(200, 1, 600), Intensities: linspace(0, 10, 600)}},
			{Name: "Hymax-3", Chromatogram: Chromatogram{Times: linspace(190, 1, 560), Intensities: linspace(0, 10, 560)}},
		},
		ConsolidatedPeaks: []ConsolidatedPeak{
			{
				RT:       420,
				RTList:   FloatList{419, 421, math.NaN()},
				AreaList: FloatList{1.2e7, 1.4e7, math.NaN()},
				Hits:     []Hit{{Name: "Diphenylamine", MatchFactor: 870}, {Name: "N-Nitrosodiphenylamine", MatchFactor: 640}},
			},
		},
	}
}

func TestRTRange_SpansAllRepeats(t *testing.T) {
	p := testProject()
	lo, hi := p.RTRange()
	if got := 180.0 / 60; math.Abs(lo-got) > 1e-9 {
		t.Fatalf("min RT = %v, want %v", lo, got)
	}
	if got := 799.0 / 60; math.Abs(hi-got) > 1e-9 {
		t.Fatalf("max RT = %v, want %v", hi, got)
	}
}

func TestRTRange_EmptyProject(t *testing.T) {
	p := &Project{Name: "empty", Repeats: []Repeat{{Name: "r1"}}}
	lo, hi := p.RTRange()
	if lo != 0 || hi != 0 {
		t.Fatalf("expected (0,0) for empty chromatograms, got (%v,%v)", lo, hi)
	}
}

func TestChromatogramSlice_WindowInMinutes(t *testing.T) {
	c := Chromatogram{Times: linspace(180, 1, 600), Intensities: linspace(0, 10, 600)}
	times, ints := c.Slice(5, 6) // 300..360 seconds
	if len(times) == 0 || len(times) != len(ints) {
		t.Fatalf("bad slice lengths: %d times, %d intensities", len(times), len(ints))
	}
	if times[0] < 300 || times[len(times)-1] > 360 {
		t.Fatalf("slice outside window: [%v, %v]", times[0], times[len(times)-1])
	}
}

func TestChromatogramSlice_NoOverlap(t *testing.T) {
	c := Chromatogram{Times: linspace(180, 1, 10), Intensities: linspace(0, 10, 10)}
	times, ints := c.Slice(50, 60)
	if times != nil || ints != nil {
		t.Fatalf("expected nil slices outside data range")
	}
}

func TestMassSpectrumHeightSum(t *testing.T) {
	ms := &MassSpectrum{Masses: []float64{50, 51, 52}, Intensities: []float64{100, 200, math.NaN()}}
	if got := ms.HeightSum(); got != 300 {
		t.Fatalf("HeightSum = %v, want 300", got)
	}
	var nilMS *MassSpectrum
	if got := nilMS.HeightSum(); !math.IsNaN(got) {
		t.Fatalf("nil spectrum HeightSum = %v, want NaN", got)
	}
}

func TestConsolidatedPeakHelpers(t *testing.T) {
	p := testProject()
	cp := &p.ConsolidatedPeaks[0]
	if got := cp.BestHit(); got != "Diphenylamine" {
		t.Fatalf("BestHit = %q", got)
	}
	if got := cp.RepeatCount(); got != 2 {
		t.Fatalf("RepeatCount = %d, want 2", got)
	}
	if got := (&ConsolidatedPeak{}).BestHit(); got != "" {
		t.Fatalf("BestHit on unidentified peak = %q, want empty", got)
	}
}

func TestMaxIntensity_IgnoresNaN(t *testing.T) {
	c := Chromatogram{Times: []float64{1, 2, 3}, Intensities: []float64{5, math.NaN(), 2}}
	if got := c.MaxIntensity(); got != 5 {
		t.Fatalf("MaxIntensity = %v, want 5", got)
	}
}
