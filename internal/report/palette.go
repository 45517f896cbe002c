package report

import "image/color"

// Named colors used by the figures.
var (
	colorBlack        = color.RGBA{A: 255}
	colorWhite        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorOrange       = color.RGBA{R: 255, G: 165, A: 255}
	colorDarkOrange   = color.RGBA{R: 255, G: 140, A: 255}
	colorGreen        = color.RGBA{G: 128, A: 255}
	colorLightGreen   = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	colorSkyBlue      = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	colorMediumPurple = color.RGBA{R: 147, G: 112, B: 219, A: 255}
	colorTeal         = color.RGBA{G: 128, B: 128, A: 255}
	colorGridLine     = color.RGBA{R: 176, G: 176, B: 176, A: 255}

	// scatter points are the default series blue at half opacity
	colorScatter = color.NRGBA{R: 31, G: 119, B: 180, A: 128}
)

// lighten mixes c with white; f=0 returns c and f=1 returns white.
func lighten(c color.Color, f float64) color.Color {
	if f <= 0 {
		return c
	}
	if f > 1 {
		f = 1
	}
	r, g, b, a := c.RGBA()
	mix := func(v uint32) uint8 {
		c8 := float64(v >> 8)
		return uint8(c8 + (255-c8)*f)
	}
	return color.RGBA{R: mix(r), G: mix(g), B: mix(b), A: uint8(a >> 8)}
}
