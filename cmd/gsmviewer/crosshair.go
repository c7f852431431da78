package main

import (
	"fmt"
	"image/color"
	"math"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/GunShotMatch/libgunshotmatch-chart/src/combined"
)

// Approximate plot-box insets of the combined chart image, in image pixels.
// go-chart does not expose the final canvas box, so the crosshair maps mouse
// position to retention time using these offsets.
const (
	plotLeftPadImg   = 58
	plotRightPadImg  = 22
	plotTopPadImg    = 36
	plotBottomPadImg = 36
)

// crosshairOverlay sits on top of the combined chart canvas and shows a
// vertical/horizontal crosshair plus a readout of the nearest peak.
type crosshairOverlay struct {
	widget.BaseWidget
	state   *uiState
	enabled bool

	hovering bool
	pos      fyne.Position

	vLine  *canvas.Line
	hLine  *canvas.Line
	rtText *canvas.Text
	ylText *canvas.Text
	idText *canvas.Text
}

func newCrosshairOverlay(state *uiState) *crosshairOverlay {
	o := &crosshairOverlay{state: state}
	lineCol := color.NRGBA{R: 120, G: 120, B: 120, A: 180}
	o.vLine = canvas.NewLine(lineCol)
	o.hLine = canvas.NewLine(lineCol)
	o.rtText = canvas.NewText("", color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	o.rtText.TextSize = 11
	o.ylText = canvas.NewText("", color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	o.ylText.TextSize = 11
	o.idText = canvas.NewText("", color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	o.idText.TextSize = 11
	o.ExtendBaseWidget(o)
	return o
}

var _ desktop.Hoverable = (*crosshairOverlay)(nil)

func (o *crosshairOverlay) MouseIn(e *desktop.MouseEvent) {
	o.hovering = true
	o.pos = e.Position
	o.Refresh()
}

func (o *crosshairOverlay) MouseMoved(e *desktop.MouseEvent) {
	o.pos = e.Position
	o.Refresh()
}

func (o *crosshairOverlay) MouseOut() {
	o.hovering = false
	o.Refresh()
}

// nearestPeak returns the displayed peak closest to the given retention time,
// or nil when none are displayed.
func nearestPeak(peaks []combined.Peak, rt float64) *combined.Peak {
	var best *combined.Peak
	bestDist := math.Inf(1)
	for i := range peaks {
		d := math.Abs(peaks[i].RT - rt)
		if d < bestDist {
			bestDist = d
			best = &peaks[i]
		}
	}
	return best
}

// rtAtFraction converts a 0..1 fraction of the plot box into retention time
// minutes for the project's retention-time range.
func rtAtFraction(minRT, maxRT, frac float64) float64 {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return minRT + frac*(maxRT-minRT)
}

func (o *crosshairOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &crosshairRenderer{o: o}
}

type crosshairRenderer struct {
	o *crosshairOverlay
}

func (r *crosshairRenderer) Layout(size fyne.Size) { r.refreshGeometry(size) }

func (r *crosshairRenderer) MinSize() fyne.Size { return fyne.NewSize(10, 10) }

func (r *crosshairRenderer) Objects() []fyne.CanvasObject {
	o := r.o
	return []fyne.CanvasObject{o.vLine, o.hLine, o.rtText, o.ylText, o.idText}
}

func (r *crosshairRenderer) Destroy() {}

func (r *crosshairRenderer) Refresh() {
	r.refreshGeometry(r.o.Size())
	canvas.Refresh(r.o)
}

func (r *crosshairRenderer) refreshGeometry(size fyne.Size) {
	o := r.o
	visible := o.enabled && o.hovering && o.state != nil && o.state.proj != nil
	if !visible {
		o.vLine.Hide()
		o.hLine.Hide()
		o.rtText.Hide()
		o.ylText.Hide()
		o.idText.Hide()
		return
	}
	o.vLine.Show()
	o.hLine.Show()
	o.rtText.Show()
	o.ylText.Show()
	o.idText.Show()

	o.vLine.Position1 = fyne.NewPos(o.pos.X, 0)
	o.vLine.Position2 = fyne.NewPos(o.pos.X, size.Height)
	o.hLine.Position1 = fyne.NewPos(0, o.pos.Y)
	o.hLine.Position2 = fyne.NewPos(size.Width, o.pos.Y)

	// Map the cursor into the chart's plot box. The canvas image is drawn
	// with ImageFillContain, so account for letterboxing first.
	img := o.state.combinedImgCanvas
	rtStr, valStr, idStr := "", "", ""
	if img != nil && img.Image != nil && size.Width > 0 && size.Height > 0 {
		ib := img.Image.Bounds()
		iw, ih := float64(ib.Dx()), float64(ib.Dy())
		sw, sh := float64(size.Width), float64(size.Height)
		scale := math.Min(sw/iw, sh/ih)
		drawnW := iw * scale
		offX := (sw - drawnW) / 2
		px := (float64(o.pos.X) - offX) / scale // image-pixel x

		minRT, maxRT := o.state.proj.RTRange()
		plotW := iw - plotLeftPadImg - plotRightPadImg
		if plotW > 0 && maxRT > minRT {
			frac := (px - plotLeftPadImg) / plotW
			rt := rtAtFraction(minRT, maxRT, frac)
			rtStr = fmt.Sprintf("RT: %.2f min", rt)
			if pk := nearestPeak(o.state.peaks, rt); pk != nil {
				valStr = fmt.Sprintf("Peak %.2f min: %.3g", pk.RT, pk.AreaOrHeight)
				idStr = pk.Hit
			}
		}
	}
	o.rtText.Text = rtStr
	o.ylText.Text = valStr
	o.idText.Text = idStr

	tx := o.pos.X + 10
	if tx > size.Width-180 {
		tx = o.pos.X - 180
	}
	ty := o.pos.Y + 8
	if ty > size.Height-48 {
		ty = o.pos.Y - 48
	}
	o.rtText.Move(fyne.NewPos(tx, ty))
	o.ylText.Move(fyne.NewPos(tx, ty+14))
	o.idText.Move(fyne.NewPos(tx, ty+28))
	o.rtText.Refresh()
	o.ylText.Refresh()
	o.idText.Refresh()
}
