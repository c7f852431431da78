// gsmviewer is a desktop viewer for GunShotMatch project files: it shows the
// consolidated peak table, the per-repeat chromatograms, the combined
// chromatogram and a per-peak inspection view.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/chromatogram"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/combined"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/peakviewer"
	"github.com/GunShotMatch/libgunshotmatch-chart/src/project"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	filePath string

	proj  *project.Project
	peaks []combined.Peak // combined-chart data currently displayed

	// toggles and modes
	useMedian     bool
	usePeakHeight bool
	showPoints    bool
	annotate      bool
	topN          int
	selectedPeak  int

	// widgets
	table             *widget.Table
	topNLabel         *widget.Label
	chromImgCanvas    *canvas.Image
	combinedImgCanvas *canvas.Image
	peakImgCanvas     *canvas.Image

	// crosshair
	crosshairEnabled bool
	combinedOverlay  *crosshairOverlay

	// chart hints toggle
	showHints bool
}

func main() {
	var fileFlag string
	var logLevel string
	flag.StringVar(&fileFlag, "file", "", "Path to a .gsmp project file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()
	project.SetLogLevel(logLevel)

	a := app.NewWithID("com.gunshotmatch.viewer")
	w := a.NewWindow("GunShotMatch Viewer")
	w.Resize(fyne.NewSize(1200, 850))

	state := &uiState{
		app:          a,
		window:       w,
		filePath:     fileFlag,
		topN:         40,
		selectedPeak: 0,
	}
	state.crosshairEnabled = a.Preferences().BoolWithFallback("crosshair", false)
	state.showHints = a.Preferences().BoolWithFallback("showHints", false)

	fileLabel := widget.NewLabel(truncatePath(state.filePath, 60))

	// toggles (callbacks assigned after canvases exist)
	medianChk := widget.NewCheck("Median", nil)
	heightChk := widget.NewCheck("Peak Height", nil)
	pointsChk := widget.NewCheck("Points", nil)
	annotateChk := widget.NewCheck("Annotate", nil)
	crosshairChk := widget.NewCheck("Crosshair", nil)
	crosshairChk.SetChecked(state.crosshairEnabled)
	hintsChk := widget.NewCheck("Hints", nil)
	hintsChk.SetChecked(state.showHints)

	// Top-N control: - [label] +
	state.topNLabel = widget.NewLabel(fmt.Sprintf("%d", state.topN))
	decN := widget.NewButton("-", func() {
		n := state.topN - 10
		if n < 10 {
			n = 10
		}
		if n != state.topN {
			state.topN = n
			state.topNLabel.SetText(fmt.Sprintf("%d", n))
			savePrefs(state)
			redrawCharts(state)
		}
	})
	incN := widget.NewButton("+", func() {
		n := state.topN + 10
		if n > 500 {
			n = 500
		}
		if n != state.topN {
			state.topN = n
			state.topNLabel.SetText(fmt.Sprintf("%d", n))
			savePrefs(state)
			redrawCharts(state)
		}
	})

	// Peak table
	state.table = widget.NewTable(
		func() (int, int) {
			rows := 1
			if state.proj != nil {
				rows += len(state.proj.ConsolidatedPeaks)
			}
			return rows, 5
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if id.Row == 0 {
				switch id.Col {
				case 0:
					lbl.SetText("#")
				case 1:
					lbl.SetText("RT (mins)")
				case 2:
					lbl.SetText("Mean Area")
				case 3:
					lbl.SetText("Repeats")
				case 4:
					lbl.SetText("Best Hit")
				}
				return
			}
			if state.proj == nil {
				lbl.SetText("")
				return
			}
			rix := id.Row - 1
			if rix < 0 || rix >= len(state.proj.ConsolidatedPeaks) {
				lbl.SetText("")
				return
			}
			cp := &state.proj.ConsolidatedPeaks[rix]
			switch id.Col {
			case 0:
				lbl.SetText(fmt.Sprintf("%d", rix))
			case 1:
				lbl.SetText(fmt.Sprintf("%.2f", cp.RT/60))
			case 2:
				pk := combined.PeakData(cp, false, false)
				lbl.SetText(chromatogram.SciFormatter1DP(pk.AreaOrHeight))
			case 3:
				lbl.SetText(fmt.Sprintf("%d", cp.RepeatCount()))
			case 4:
				if name := cp.BestHit(); name != "" {
					lbl.SetText(name)
				} else {
					lbl.SetText("-")
				}
			}
		},
	)
	state.table.SetColumnWidth(0, 50)
	state.table.SetColumnWidth(1, 90)
	state.table.SetColumnWidth(2, 110)
	state.table.SetColumnWidth(3, 80)
	state.table.SetColumnWidth(4, 320)
	state.table.OnSelected = func(id widget.TableCellID) {
		if id.Row <= 0 || state.proj == nil {
			return
		}
		rix := id.Row - 1
		if rix >= len(state.proj.ConsolidatedPeaks) {
			return
		}
		state.selectedPeak = rix
		savePrefs(state)
		redrawPeakChart(state)
	}

	// chart placeholders
	state.chromImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.chromImgCanvas.FillMode = canvas.ImageFillContain
	state.combinedImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.combinedImgCanvas.FillMode = canvas.ImageFillContain
	state.peakImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.peakImgCanvas.FillMode = canvas.ImageFillContain
	state.combinedOverlay = newCrosshairOverlay(state)

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state, fileLabel) }),
		widget.NewButton("Reload", func() { loadAll(state, fileLabel) }),
		widget.NewLabel("Top peaks:"), decN, state.topNLabel, incN,
		medianChk, heightChk, pointsChk, annotateChk, crosshairChk, hintsChk,
		widget.NewLabel("File:"), fileLabel,
	)

	state.chromImgCanvas.SetMinSize(fyne.NewSize(900, 500))
	state.combinedImgCanvas.SetMinSize(fyne.NewSize(900, 420))
	state.peakImgCanvas.SetMinSize(fyne.NewSize(900, 500))

	chromScroll := container.NewVScroll(state.chromImgCanvas)
	chromScroll.SetMinSize(fyne.NewSize(900, 650))
	peakScroll := container.NewVScroll(state.peakImgCanvas)
	peakScroll.SetMinSize(fyne.NewSize(900, 650))

	tabs := container.NewAppTabs(
		container.NewTabItem("Peaks", state.table),
		container.NewTabItem("Chromatograms", chromScroll),
		container.NewTabItem("Combined", container.NewStack(state.combinedImgCanvas, state.combinedOverlay)),
		container.NewTabItem("Peak View", peakScroll),
	)
	tabs.SetTabLocation(container.TabLocationTop)
	tabs.OnSelected = func(ti *container.TabItem) {
		if state.app != nil {
			state.app.Preferences().SetInt("selectedTabIndex", tabs.SelectedIndex())
		}
	}
	w.SetContent(container.NewBorder(top, nil, nil, nil, tabs))

	// Redraw charts on window resize so they scale with width
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() { redrawCharts(state) })
					}
				}
			}
		}()
	}

	// Assign callbacks now that canvases exist
	medianChk.OnChanged = func(b bool) { state.useMedian = b; savePrefs(state); redrawCharts(state) }
	heightChk.OnChanged = func(b bool) { state.usePeakHeight = b; savePrefs(state); redrawCharts(state) }
	pointsChk.OnChanged = func(b bool) { state.showPoints = b; savePrefs(state); redrawCharts(state) }
	annotateChk.OnChanged = func(b bool) { state.annotate = b; savePrefs(state); redrawCharts(state) }
	crosshairChk.OnChanged = func(b bool) {
		state.crosshairEnabled = b
		savePrefs(state)
		if state.combinedOverlay != nil {
			state.combinedOverlay.enabled = b
			state.combinedOverlay.Refresh()
		}
	}
	hintsChk.OnChanged = func(b bool) { state.showHints = b; savePrefs(state); redrawCharts(state) }

	buildMenus(state, fileLabel)
	loadPrefs(state, medianChk, heightChk, pointsChk, annotateChk, fileLabel, tabs)
	medianChk.SetChecked(state.useMedian)
	heightChk.SetChecked(state.usePeakHeight)
	pointsChk.SetChecked(state.showPoints)
	annotateChk.SetChecked(state.annotate)
	if state.combinedOverlay != nil {
		state.combinedOverlay.enabled = state.crosshairEnabled
		state.combinedOverlay.Refresh()
	}

	loadAll(state, fileLabel)

	w.ShowAndRun()
}

// menus and dialogs
func buildMenus(state *uiState, fileLabel *widget.Label) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(truncatePath(f, 60), func() {
			state.filePath = f
			fileLabel.SetText(truncatePath(state.filePath, 60))
			savePrefs(state)
			loadAll(state, fileLabel)
		}))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(state); buildMenus(state, fileLabel) })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state, fileLabel) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state, fileLabel) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Chromatograms…", func() { exportChartPNG(state, state.chromImgCanvas, "chromatograms.png") }),
		fyne.NewMenuItem("Export Combined Chart…", func() { exportChartPNG(state, state.combinedImgCanvas, "combined_chromatogram.png") }),
		fyne.NewMenuItem("Export Peak View…", func() { exportChartPNG(state, state.peakImgCanvas, "peak.png") }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { loadAll(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { loadAll(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

func openFileDialog(state *uiState, fileLabel *widget.Label) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		fileLabel.SetText(truncatePath(state.filePath, 60))
		addRecentFile(state, state.filePath)
		savePrefs(state)
		loadAll(state, fileLabel)
	}, state.window)
	d.Show()
}

// load the project and render everything
func loadAll(state *uiState, fileLabel *widget.Label) {
	if state.filePath == "" {
		return
	}
	p, err := project.Load(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.proj = p
	if state.selectedPeak >= len(p.ConsolidatedPeaks) {
		state.selectedPeak = 0
	}
	state.window.SetTitle("GunShotMatch Viewer – " + p.Name)
	if state.table != nil {
		state.table.Refresh()
	}
	redrawCharts(state)
}

func combinedOptions(state *uiState) combined.Options {
	cw, chh := chartSize(state)
	return combined.Options{
		TopNPeaks:     state.topN,
		UseMedian:     state.useMedian,
		UsePeakHeight: state.usePeakHeight,
		ShowPoints:    state.showPoints,
		AnnotateTopN:  annotateCount(state),
		Width:         cw,
		Height:        chh,
	}
}

func annotateCount(state *uiState) int {
	if state.annotate {
		return 10
	}
	return 0
}

func redrawCharts(state *uiState) {
	if state.proj == nil {
		return
	}
	cw, chh := chartSize(state)

	chromImg, err := chromatogram.Render(state.proj, chromatogram.Options{PanelWidth: cw, MinorGridlines: true})
	if err != nil {
		project.Errorf("chromatogram render: %v", err)
		chromImg = blank(cw, chh)
	}
	if state.showHints {
		chromImg = drawHint(chromImg, "Hint: one panel per repeat run. Matching traces indicate consistent sample preparation.")
	}
	if state.chromImgCanvas != nil {
		state.chromImgCanvas.Image = chromImg
		state.chromImgCanvas.SetMinSize(fyne.NewSize(float32(chromImg.Bounds().Dx()), float32(chromImg.Bounds().Dy())))
		state.chromImgCanvas.Refresh()
	}

	opts := combinedOptions(state)
	state.peaks = combined.Data(state.proj, opts)
	combinedImg, err := combined.Render(state.proj, opts)
	if err != nil {
		project.Errorf("combined render: %v", err)
		combinedImg = blank(cw, chh)
	}
	if state.showHints {
		combinedImg = drawHint(combinedImg, "Hint: bar height is the peak statistic across repeats; error bars show the spread.")
	}
	if state.combinedImgCanvas != nil {
		state.combinedImgCanvas.Image = combinedImg
		state.combinedImgCanvas.SetMinSize(fyne.NewSize(float32(cw), float32(chh)))
		state.combinedImgCanvas.Refresh()
	}
	if state.combinedOverlay != nil {
		state.combinedOverlay.Refresh()
	}

	redrawPeakChart(state)
}

func redrawPeakChart(state *uiState) {
	if state.proj == nil || len(state.proj.ConsolidatedPeaks) == 0 {
		return
	}
	cw, _ := chartSize(state)
	img, err := peakviewer.RenderPeak(state.proj, state.selectedPeak, peakviewer.Options{PanelWidth: cw})
	if err != nil {
		project.Errorf("peak render: %v", err)
		return
	}
	if state.showHints {
		img = drawHint(img, "Hint: the dashed line marks the peak's retention time in each repeat.")
	}
	if state.peakImgCanvas != nil {
		state.peakImgCanvas.Image = img
		state.peakImgCanvas.SetMinSize(fyne.NewSize(float32(img.Bounds().Dx()), float32(img.Bounds().Dy())))
		state.peakImgCanvas.Refresh()
	}
}

// chartSize computes a chart size based on the current window width so charts
// use more X-axis space.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return 1100, 420
	}
	sz := state.window.Canvas().Size()
	w := int(sz.Width*0.95) - 12
	if w < 800 {
		w = 800
	}
	h := int(float32(w) * 0.38)
	if h < 320 {
		h = 320
	}
	if h > 560 {
		h = 560
	}
	return w, h
}

// drawHint draws a small hint string onto the provided image near the bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	return img
}

// export PNG
func exportChartPNG(state *uiState, img *canvas.Image, defaultName string) {
	if state == nil || state.window == nil || img == nil || img.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, img.Image); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// recent files helpers
func recentFiles(state *uiState) []string {
	prefs := state.app.Preferences()
	raw := prefs.StringWithFallback("recentFiles", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(state *uiState, path string) {
	prefs := state.app.Preferences()
	list := recentFiles(state)
	filtered := []string{path}
	for _, f := range list {
		if f != path && len(filtered) < 10 {
			filtered = append(filtered, f)
		}
	}
	prefs.SetString("recentFiles", strings.Join(filtered, "\n"))
}

func clearRecentFiles(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("recentFiles", "")
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("lastFile", state.filePath)
	prefs.SetInt("topN", state.topN)
	prefs.SetInt("selectedPeak", state.selectedPeak)
	prefs.SetBool("useMedian", state.useMedian)
	prefs.SetBool("usePeakHeight", state.usePeakHeight)
	prefs.SetBool("showPoints", state.showPoints)
	prefs.SetBool("annotate", state.annotate)
	prefs.SetBool("crosshair", state.crosshairEnabled)
	prefs.SetBool("showHints", state.showHints)
}

func loadPrefs(state *uiState, median, height, points, annotate *widget.Check, fileLabel *widget.Label, tabs *container.AppTabs) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	if f := prefs.StringWithFallback("lastFile", state.filePath); f != "" {
		state.filePath = f
		if fileLabel != nil {
			fileLabel.SetText(truncatePath(state.filePath, 60))
		}
	}
	if n := prefs.IntWithFallback("topN", state.topN); n > 0 {
		state.topN = n
		if state.topNLabel != nil {
			state.topNLabel.SetText(fmt.Sprintf("%d", n))
		}
	}
	state.selectedPeak = prefs.IntWithFallback("selectedPeak", state.selectedPeak)
	state.useMedian = prefs.BoolWithFallback("useMedian", state.useMedian)
	state.usePeakHeight = prefs.BoolWithFallback("usePeakHeight", state.usePeakHeight)
	state.showPoints = prefs.BoolWithFallback("showPoints", state.showPoints)
	state.annotate = prefs.BoolWithFallback("annotate", state.annotate)
	if median != nil {
		median.SetChecked(state.useMedian)
	}
	if height != nil {
		height.SetChecked(state.usePeakHeight)
	}
	if points != nil {
		points.SetChecked(state.showPoints)
	}
	if annotate != nil {
		annotate.SetChecked(state.annotate)
	}
	state.crosshairEnabled = prefs.BoolWithFallback("crosshair", state.crosshairEnabled)
	if tabs != nil {
		idx := prefs.IntWithFallback("selectedTabIndex", 0)
		if idx >= 0 && idx < len(tabs.Items) {
			tabs.SelectIndex(idx)
		}
	}
	state.showHints = prefs.BoolWithFallback("showHints", state.showHints)
}

// utils
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if left <= 0 {
		return "..." + base
	}
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
