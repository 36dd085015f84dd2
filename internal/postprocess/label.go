package postprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label draws lines of text in the top-left corner with a one-pixel drop
// shadow. Lines that do not fit are clipped by the image bounds.
func Label(img *image.NRGBA, c color.Color, lines ...string) {
	face := basicfont.Face7x13
	const margin = 6
	lineH := face.Metrics().Height.Ceil()

	d := &font.Drawer{Dst: img, Face: face}
	b := img.Bounds()
	for i, line := range lines {
		x := b.Min.X + margin
		y := b.Min.Y + margin + face.Ascent + i*lineH

		d.Src = image.NewUniform(color.NRGBA{0, 0, 0, 200})
		d.Dot = fixed.P(x+1, y+1)
		d.DrawString(line)

		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
}

// TextWidth returns the advance of s in pixels.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}
