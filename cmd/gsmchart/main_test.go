package main

import (
	"math"
	"testing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

func TestProjectBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/Eley Hymax.gsmp", "Eley_Hymax"},
		{"hymax.gsmp", "hymax"},
		{"noext", "noext"},
		{".gsmp", "project"},
	}
	for _, tc := range tests {
		if got := projectBase(tc.in); got != tc.want {
			t.Errorf("projectBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitCharts(t *testing.T) {
	got := splitCharts(" Combined, ,peaks,CHROMATOGRAMS ")
	want := []string{"combined", "peaks", "chromatograms"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPeakIndices(t *testing.T) {
	p := &project.Project{
		ConsolidatedPeaks: []project.ConsolidatedPeak{
			{RT: 1, RTList: project.FloatList{1}, AreaList: project.FloatList{1}},
			{RT: 2, RTList: project.FloatList{2}, AreaList: project.FloatList{math.NaN()}},
		},
	}
	if got := peakIndices(p, -1); len(got) != 2 {
		t.Fatalf("all peaks: got %v", got)
	}
	if got := peakIndices(p, 1); len(got) != 1 || got[0] != 1 {
		t.Fatalf("single peak: got %v", got)
	}
	if got := peakIndices(p, 7); got != nil {
		t.Fatalf("out of range: got %v", got)
	}
}
