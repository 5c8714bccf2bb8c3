package geo

import (
	"fmt"
	"image/color"
)

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Transparent is fully transparent black, the default canvas background.
var Transparent = Color{}

// NRGBA converts to an 8-bit non-premultiplied color, clamping out of range components.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// IsMultiplyIdentity reports whether c leaves a color unchanged when multiplied.
func (c Color) IsMultiplyIdentity() bool {
	return c.R == 1 && c.G == 1 && c.B == 1 && c.A == 1
}

// IsAddIdentity reports whether c leaves a color unchanged when added.
func (c Color) IsAddIdentity() bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

// String returns the color components for logging.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
