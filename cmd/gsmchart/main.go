// gsmchart renders chromatogram charts for a GunShotMatch project file to
// PNG files, without a GUI. Flag defaults can be supplied via a .env file
// (GSMCHART_PROJECT, GSMCHART_OUT).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/chromatogram"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/combined"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/peakviewer"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

func main() {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	var (
		projectPath = flag.String("project", os.Getenv("GSMCHART_PROJECT"), "Path to the .gsmp project file")
		outDir      = flag.String("out", envOr("GSMCHART_OUT", "."), "Output directory for PNG files")
		charts      = flag.String("charts", "chromatograms,combined", "Comma-separated charts to render: chromatograms, combined, peaks")
		topN        = flag.Int("top", 0, "Combined chart: keep only the n largest peaks (0 keeps all)")
		minArea     = flag.Float64("min-area", 0, "Combined chart: drop peaks below this area/height")
		useMedian   = flag.Bool("median", false, "Combined chart: plot median and inter-quartile range")
		useHeight   = flag.Bool("height", false, "Combined chart: plot peak height instead of area")
		showPoints  = flag.Bool("points", false, "Combined chart: overlay per-repeat values")
		annotateN   = flag.Int("annotate", 0, "Combined chart: label the n largest peaks with their best hit")
		peakIndex   = flag.Int("peak", -1, "Peaks chart: render only this consolidated peak (-1 renders all)")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()
	project.SetLogLevel(*logLevel)

	if *projectPath == "" {
		fmt.Fprintln(os.Stderr, "gsmchart: -project is required (or set GSMCHART_PROJECT)")
		flag.Usage()
		os.Exit(2)
	}

	p, err := project.Load(*projectPath)
	if err != nil {
		project.Errorf("%v", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		project.Errorf("create output directory: %v", err)
		os.Exit(1)
	}

	base := projectBase(*projectPath)
	combinedOpts := combined.Options{
		TopNPeaks:     *topN,
		MinArea:       *minArea,
		UseMedian:     *useMedian,
		UsePeakHeight: *useHeight,
		ShowPoints:    *showPoints,
		AnnotateTopN:  *annotateN,
	}

	failed := false
	for _, kind := range splitCharts(*charts) {
		switch kind {
		case "chromatograms":
			path := filepath.Join(*outDir, base+"_chromatograms.png")
			if err := writeChart(path, func(f *os.File) error {
				return chromatogram.WritePNG(f, p, chromatogram.Options{MinorGridlines: true})
			}); err != nil {
				project.Errorf("chromatograms: %v", err)
				failed = true
			}
		case "combined":
			path := filepath.Join(*outDir, base+"_combined.png")
			if err := writeChart(path, func(f *os.File) error {
				return combined.WritePNG(f, p, combinedOpts)
			}); err != nil {
				project.Errorf("combined: %v", err)
				failed = true
			}
		case "peaks":
			for _, i := range peakIndices(p, *peakIndex) {
				i := i
				path := filepath.Join(*outDir, fmt.Sprintf("%s_peak_%03d.png", base, i))
				if err := writeChart(path, func(f *os.File) error {
					return peakviewer.WritePNG(f, p, p.ConsolidatedPeaks[i].RTList, peakviewer.Options{})
				}); err != nil {
					project.Errorf("peak %d: %v", i, err)
					failed = true
				}
			}
		default:
			project.Warnf("unknown chart type %q (want chromatograms, combined or peaks)", kind)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func writeChart(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// projectBase derives the output file prefix from the project path, with
// spaces flattened so the files are shell-friendly.
func projectBase(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" {
		base = "project"
	}
	return base
}

func splitCharts(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// peakIndices resolves -peak into the list of peaks to render.
func peakIndices(p *project.Project, index int) []int {
	if index >= 0 {
		if index >= len(p.ConsolidatedPeaks) {
			project.Warnf("peak index %d out of range (%d peaks)", index, len(p.ConsolidatedPeaks))
			return nil
		}
		return []int{index}
	}
	out := make([]int, len(p.ConsolidatedPeaks))
	for i := range out {
		out[i] = i
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
