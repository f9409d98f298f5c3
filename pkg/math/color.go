package math

import "github.com/chewxy/math32"

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black = Color{0, 0, 0, 1}
	Green = Color{0, 1, 0, 1}
	White = Color{1, 1, 1, 1}
)

// RGB returns an opaque color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// ColorFromSlice builds a color from 3 or 4 components.
// Missing alpha defaults to 1; any other length returns Black.
func ColorFromSlice(c []float32) Color {
	switch len(c) {
	case 3:
		return Color{c[0], c[1], c[2], 1}
	case 4:
		return Color{c[0], c[1], c[2], c[3]}
	default:
		return Black
	}
}

// Slice returns the components as [r, g, b, a].
func (c Color) Slice() []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}

// RGBA8 converts the color to 8-bit channels, clamping out-of-range values.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

func to8(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
