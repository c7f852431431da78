// Package project holds the GunShotMatch data model consumed by the chart
// packages: a project groups the repeat GC-MS runs of one propellant/ammunition
// sample together with the peaks consolidated across those repeats.
package project

import (
	"math"
)

// Chromatogram is a total-ion chromatogram for a single GC-MS run.
// Times are retention times in seconds and must increase monotonically;
// Intensities holds the detector signal for each time point.
type Chromatogram struct {
	Times       []float64 `json:"times"`
	Intensities []float64 `json:"intensities"`
}

// Len returns the number of scan points.
func (c *Chromatogram) Len() int { return len(c.Times) }

// MaxIntensity returns the largest intensity, or 0 for an empty chromatogram.
func (c *Chromatogram) MaxIntensity() float64 {
	max := 0.0
	for _, v := range c.Intensities {
		if !math.IsNaN(v) && v > max {
			max = v
		}
	}
	return max
}

// Slice returns the chromatogram points with retention time (in minutes)
// inside [minRT, maxRT]. The returned slices alias the originals.
func (c *Chromatogram) Slice(minRT, maxRT float64) (times, intensities []float64) {
	lo := len(c.Times)
	hi := 0
	for i, t := range c.Times {
		m := t / 60
		if m >= minRT && m <= maxRT {
			if i < lo {
				lo = i
			}
			hi = i + 1
		}
	}
	if lo >= hi {
		return nil, nil
	}
	return c.Times[lo:hi], c.Intensities[lo:hi]
}

// Repeat is one GC-MS run (datafile) within a project.
type Repeat struct {
	Name         string       `json:"name"`
	Chromatogram Chromatogram `json:"chromatogram"`
}

// MassSpectrum is the mass spectrum recorded at a peak apex.
type MassSpectrum struct {
	Masses      []float64 `json:"masses"`
	Intensities []float64 `json:"intensities"`
}

// HeightSum returns the summed ion intensity of the spectrum. It stands in
// for the peak height when charts are drawn in height mode.
func (ms *MassSpectrum) HeightSum() float64 {
	if ms == nil || len(ms.Intensities) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range ms.Intensities {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// Hit is a library-search identification for a consolidated peak.
type Hit struct {
	Name        string  `json:"name"`
	MatchFactor float64 `json:"match_factor"`
}

// ConsolidatedPeak is a peak aligned across the repeats of a project.
// RT is the mean retention time in seconds. RTList and AreaList carry the
// per-repeat values, with NaN where the peak was not found in that repeat.
// Spectra holds the per-repeat apex spectra (nil entries allowed) and Hits
// the identifications, best match first.
type ConsolidatedPeak struct {
	RT       float64         `json:"rt"`
	RTList   FloatList       `json:"rt_list"`
	AreaList FloatList       `json:"area_list"`
	Spectra  []*MassSpectrum `json:"spectra,omitempty"`
	Hits     []Hit           `json:"hits,omitempty"`
}

// BestHit returns the name of the top library hit, or "" when unidentified.
func (cp *ConsolidatedPeak) BestHit() string {
	if len(cp.Hits) == 0 {
		return ""
	}
	return cp.Hits[0].Name
}

// RepeatCount returns the number of repeats the peak was actually found in.
func (cp *ConsolidatedPeak) RepeatCount() int {
	n := 0
	for _, rt := range cp.RTList {
		if !math.IsNaN(rt) {
			n++
		}
	}
	return n
}

// Project is a set of repeat runs plus the peaks consolidated across them.
type Project struct {
	Name              string             `json:"name"`
	Repeats           []Repeat           `json:"repeats"`
	ConsolidatedPeaks []ConsolidatedPeak `json:"consolidated_peaks,omitempty"`
}

// RTRange returns the retention-time range covered by every repeat's
// chromatogram, in minutes. Both values are 0 when no repeat has data.
func (p *Project) RTRange() (minRT, maxRT float64) {
	found := false
	for i := range p.Repeats {
		c := &p.Repeats[i].Chromatogram
		if c.Len() == 0 {
			continue
		}
		lo := c.Times[0] / 60
		hi := c.Times[c.Len()-1] / 60
		if !found {
			minRT, maxRT = lo, hi
			found = true
			continue
		}
		if lo < minRT {
			minRT = lo
		}
		if hi > maxRT {
			maxRT = hi
		}
	}
	if !found {
		return 0, 0
	}
	return minRT, maxRT
}
