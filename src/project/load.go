package project

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Project files (.gsmp) are gzip-compressed JSON documents. Loading tolerates
// plain (uncompressed) JSON too, which is handy for fixtures and debugging.

var (
	// ErrEmptyProject is returned when a project file contains no repeats.
	ErrEmptyProject = errors.New("project has no repeats")
)

const gzipMagic = "\x1f\x8b"

// FloatList is a []float64 that decodes JSON nulls as NaN. Serialisers in the
// parent toolkit write null where a peak was not found in a repeat.
type FloatList []float64

// UnmarshalJSON implements json.Unmarshaler.
func (fl *FloatList) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*fl = out
	return nil
}

// MarshalJSON implements json.Marshaler, writing NaN back out as null.
func (fl FloatList) MarshalJSON() ([]byte, error) {
	raw := make([]*float64, len(fl))
	for i := range fl {
		if !math.IsNaN(fl[i]) {
			v := fl[i]
			raw[i] = &v
		}
	}
	return json.Marshal(raw)
}

// Load reads a .gsmp project file from disk.
func Load(path string) (*Project, error) {
	defer TimeTrack(time.Now(), "project load")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer f.Close()
	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	Infof("loaded project %q: %d repeats, %d consolidated peaks", p.Name, len(p.Repeats), len(p.ConsolidatedPeaks))
	return p, nil
}

// Read decodes a project from r, transparently handling gzip compression.
func Read(r io.Reader) (*Project, error) {
	br := newMagicReader(r)
	if br.isGzip() {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		return decode(gz)
	}
	return decode(br)
}

func decode(r io.Reader) (*Project, error) {
	var p Project
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the model invariants the chart packages rely on.
func (p *Project) Validate() error {
	if len(p.Repeats) == 0 {
		return ErrEmptyProject
	}
	for i := range p.Repeats {
		c := &p.Repeats[i].Chromatogram
		if len(c.Times) != len(c.Intensities) {
			return fmt.Errorf("repeat %d (%s): %d times but %d intensities", i, p.Repeats[i].Name, len(c.Times), len(c.Intensities))
		}
		for j := 1; j < len(c.Times); j++ {
			if c.Times[j] <= c.Times[j-1] {
				return fmt.Errorf("repeat %d (%s): retention times not increasing at index %d", i, p.Repeats[i].Name, j)
			}
		}
	}
	n := len(p.Repeats)
	for i := range p.ConsolidatedPeaks {
		cp := &p.ConsolidatedPeaks[i]
		if len(cp.RTList) != n {
			return fmt.Errorf("consolidated peak %d: %d retention times for %d repeats", i, len(cp.RTList), n)
		}
		if len(cp.AreaList) != n {
			return fmt.Errorf("consolidated peak %d: %d areas for %d repeats", i, len(cp.AreaList), n)
		}
		if len(cp.Spectra) != 0 && len(cp.Spectra) != n {
			return fmt.Errorf("consolidated peak %d: %d spectra for %d repeats", i, len(cp.Spectra), n)
		}
	}
	return nil
}

// Write encodes the project as gzip-compressed JSON.
func (p *Project) Write(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return gz.Close()
}

// Save writes the project to a .gsmp file.
func (p *Project) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// magicReader buffers the first bytes so the gzip magic can be sniffed
// without consuming them.
type magicReader struct {
	r     io.Reader
	magic []byte
}

func newMagicReader(r io.Reader) *magicReader {
	magic := make([]byte, 2)
	n, _ := io.ReadFull(r, magic)
	return &magicReader{r: r, magic: magic[:n]}
}

func (m *magicReader) isGzip() bool { return bytes.Equal(m.magic, []byte(gzipMagic)) }

func (m *magicReader) Read(p []byte) (int, error) {
	if len(m.magic) > 0 {
		n := copy(p, m.magic)
		m.magic = m.magic[n:]
		return n, nil
	}
	return m.r.Read(p)
}
