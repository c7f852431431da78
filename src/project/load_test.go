package project

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip_Gzip(t *testing.T) {
	p := testProject()
	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf))

	// Written form must carry the gzip magic.
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0x1f, 0x8b}))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, p.Name, got.Name)
	require.Len(t, got.Repeats, 3)
	require.Len(t, got.ConsolidatedPeaks, 1)

	// NaN entries round-trip through null.
	cp := got.ConsolidatedPeaks[0]
	require.True(t, math.IsNaN(cp.RTList[2]))
	require.Equal(t, 419.0, cp.RTList[0])
}

func TestRead_PlainJSON(t *testing.T) {
	doc := `{
		"name": "plain",
		"repeats": [
			{"name": "r1", "chromatogram": {"times": [1, 2, 3], "intensities": [0, 5, 1]}}
		],
		"consolidated_peaks": [
			{"rt": 2, "rt_list": [2], "area_list": [null]}
		]
	}`
	p, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "plain", p.Name)
	require.True(t, math.IsNaN(float64(p.ConsolidatedPeaks[0].AreaList[0])))
}

func TestLoadSave_File(t *testing.T) {
	p := testProject()
	path := filepath.Join(t.TempDir(), "hymax.gsmp")
	require.NoError(t, p.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, p.Name, got.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gsmp"))
	require.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Project)
		wantSub string
	}{
		{
			name:    "no repeats",
			mutate:  func(p *Project) { p.Repeats = nil },
			wantSub: "no repeats",
		},
		{
			name: "length mismatch",
			mutate: func(p *Project) {
				p.Repeats[0].Chromatogram.Intensities = p.Repeats[0].Chromatogram.Intensities[:10]
			},
			wantSub: "intensities",
		},
		{
			name: "non increasing times",
			mutate: func(p *Project) {
				p.Repeats[1].Chromatogram.Times[5] = p.Repeats[1].Chromatogram.Times[4]
			},
			wantSub: "not increasing",
		},
		{
			name: "rt list wrong length",
			mutate: func(p *Project) {
				p.ConsolidatedPeaks[0].RTList = p.ConsolidatedPeaks[0].RTList[:1]
			},
			wantSub: "retention times",
		},
		{
			name: "area list wrong length",
			mutate: func(p *Project) {
				p.ConsolidatedPeaks[0].AreaList = append(p.ConsolidatedPeaks[0].AreaList, 1)
			},
			wantSub: "areas",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testProject()
			tc.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantSub)
		})
	}
}

func TestFloatListMarshal_NaNAsNull(t *testing.T) {
	fl := FloatList{1.5, math.NaN()}
	out, err := fl.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `[1.5, null]`, string(out))
}
