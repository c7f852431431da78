package chromatogram

import (
	"bytes"
	png "image/png"
	"math"
	"testing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

func sine(start, step float64, n int) ([]float64, []float64) {
	times := make([]float64, n)
	ints := make([]float64, n)
	for i := range times {
		times[i] = start + float64(i)*step
		ints[i] = 1e6 * (1.1 + math.Sin(float64(i)/25))
	}
	return times, ints
}

func chartProject(t *testing.T) *project.Project {
	t.Helper()
	t1, i1 := sine(180, 1, 400)
	t2, i2 := sine(200, 1, 400)
	return &project.Project{
		Name: "Test Propellant",
		Repeats: []project.Repeat{
			{Name: "rpt-1", Chromatogram: project.Chromatogram{Times: t1, Intensities: i1}},
			{Name: "rpt-2", Chromatogram: project.Chromatogram{Times: t2, Intensities: i2}},
		},
	}
}

func TestRender_PanelPerRepeat(t *testing.T) {
	p := chartProject(t)
	opts := Options{PanelWidth: 600, PanelHeight: 200}
	img, err := Render(p, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 600 {
		t.Fatalf("width = %d, want 600", b.Dx())
	}
	wantH := titleBannerHeight + 2*200
	if b.Dy() != wantH {
		t.Fatalf("height = %d, want %d", b.Dy(), wantH)
	}
}

func TestRender_EmptyRepeatGetsBlankPanel(t *testing.T) {
	p := chartProject(t)
	p.Repeats = append(p.Repeats, project.Repeat{Name: "empty"})
	img, err := Render(p, Options{PanelWidth: 600, PanelHeight: 150})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := img.Bounds().Dy(), titleBannerHeight+3*150; got != want {
		t.Fatalf("height = %d, want %d", got, want)
	}
}

func TestRender_SinglePointChromatogram(t *testing.T) {
	p := &project.Project{
		Name: "single",
		Repeats: []project.Repeat{
			{Name: "r1", Chromatogram: project.Chromatogram{Times: []float64{300}, Intensities: []float64{1e5}}},
		},
	}
	if _, err := Render(p, Options{PanelWidth: 400, PanelHeight: 150}); err != nil {
		t.Fatalf("Render single point: %v", err)
	}
}

func TestWritePNG_Decodable(t *testing.T) {
	p := chartProject(t)
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, Options{PanelWidth: 500, PanelHeight: 160, MinorGridlines: true}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 500 {
		t.Fatalf("decoded width = %d", img.Bounds().Dx())
	}
}

func TestSciFormatter1DP(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{12345678.0, "1.2e+07"},
		{0.0, "0"},
		{-2500.0, "-2.5e+03"},
		{"not a float", ""},
	}
	for _, tc := range tests {
		if got := SciFormatter1DP(tc.in); got != tc.want {
			t.Errorf("SciFormatter1DP(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRTTicks_CoverRange(t *testing.T) {
	ticks := RTTicks(3, 13, 10)
	if len(ticks) < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Value > 3 {
		t.Errorf("first tick %v does not cover range start", ticks[0].Value)
	}
	if ticks[len(ticks)-1].Value < 13 {
		t.Errorf("last tick %v does not cover range end", ticks[len(ticks)-1].Value)
	}
}

func TestMinorRTGridLines_SubdivideMajors(t *testing.T) {
	majors := RTTicks(0, 10, 6)
	minors := MinorRTGridLines(majors)
	if len(minors) != 4*(len(majors)-1) {
		t.Fatalf("got %d minors for %d majors", len(minors), len(majors))
	}
	for _, gl := range minors {
		if !gl.IsMinor {
			t.Fatalf("expected minor gridline, got major at %v", gl.Value)
		}
	}
}

func TestStackPanels_NoPanels(t *testing.T) {
	img := StackPanels("empty project", 400, nil)
	if img.Bounds().Dy() <= titleBannerHeight {
		t.Fatalf("expected placeholder height, got %d", img.Bounds().Dy())
	}
}
