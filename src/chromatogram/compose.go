package chromatogram

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const titleBannerHeight = 26

// StackPanels composes the per-repeat panels vertically under a title banner,
// producing the single image the callers display or save.
func StackPanels(title string, width int, panels []image.Image) image.Image {
	if width <= 0 {
		width = 800
	}
	height := titleBannerHeight
	for _, p := range panels {
		height += p.Bounds().Dy()
	}
	if len(panels) == 0 {
		height += 120
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawTitle(out, title, width)

	y := titleBannerHeight
	for _, p := range panels {
		b := p.Bounds()
		// centre narrower panels
		x := (width - b.Dx()) / 2
		if x < 0 {
			x = 0
		}
		dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
		draw.Draw(out, dst, p, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}

// drawTitle centres the project name in the banner with the basic 7x13 face.
func drawTitle(dst *image.RGBA, title string, width int) {
	if title == "" {
		return
	}
	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	tw := dr.MeasureString(title).Ceil()
	x := (width - tw) / 2
	if x < 4 {
		x = 4
	}
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(titleBannerHeight - 9)}
	dr.DrawString(title)
}

// BlankPanel returns a plain white panel used when a repeat has no data.
func BlankPanel(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}
