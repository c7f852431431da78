package main

import (
	"math"
	"strings"
	"testing"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/combined"
)

func TestTruncatePath_ShortUnchanged(t *testing.T) {
	p := "/tmp/project.gsmp"
	if got := truncatePath(p, 60); got != p {
		t.Fatalf("expected %q unchanged, got %q", p, got)
	}
}

func TestTruncatePath_LongKeepsBase(t *testing.T) {
	p := "/very/long/path/with/many/segments/that/keeps/going/on/Eley Hawk Propellant.gsmp"
	got := truncatePath(p, 40)
	if len(got) > 48 {
		t.Fatalf("truncated path too long: %d chars: %q", len(got), got)
	}
	if !strings.HasSuffix(got, "Eley Hawk Propellant.gsmp") {
		t.Fatalf("expected base name preserved, got %q", got)
	}
}

func TestNearestPeak(t *testing.T) {
	peaks := []combined.Peak{
		{RT: 3.0, AreaOrHeight: 1e6},
		{RT: 7.5, AreaOrHeight: 2e6},
		{RT: 12.0, AreaOrHeight: 5e5},
	}
	pk := nearestPeak(peaks, 8.0)
	if pk == nil || pk.RT != 7.5 {
		t.Fatalf("expected peak at 7.5 min, got %+v", pk)
	}
	if nearestPeak(nil, 8.0) != nil {
		t.Fatal("expected nil for empty peak slice")
	}
}

func TestRtAtFraction_ClampsAndInterpolates(t *testing.T) {
	if got := rtAtFraction(2, 12, 0.5); math.Abs(got-7) > 1e-9 {
		t.Fatalf("expected midpoint 7, got %v", got)
	}
	if got := rtAtFraction(2, 12, -0.5); got != 2 {
		t.Fatalf("expected clamp to min, got %v", got)
	}
	if got := rtAtFraction(2, 12, 1.5); got != 12 {
		t.Fatalf("expected clamp to max, got %v", got)
	}
}

func TestAnnotateCount(t *testing.T) {
	s := &uiState{annotate: false}
	if got := annotateCount(s); got != 0 {
		t.Fatalf("expected 0 when disabled, got %d", got)
	}
	s.annotate = true
	if got := annotateCount(s); got != 10 {
		t.Fatalf("expected 10 when enabled, got %d", got)
	}
}
