package render

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a hue/lightness/saturation triple. H is cyclic; L and S live in [0,1].
type Color struct{ H, L, S float64 }

// RGB is linear output color, 0..1 per channel.
type RGB struct{ R, G, B float32 }

var (
	Black = Color{}
	White = Color{H: 0, L: 1, S: 0}
)

// WrapHue folds any hue, negatives included, into [0,1).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 1.0)
	if h < 0 {
		h += 1.0
	}
	// -tiny + 1.0 can round up to exactly 1.0
	if h >= 1.0 {
		h = 0
	}
	return h
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Normalized returns c with a wrapped hue and clamped lightness and saturation.
func (c Color) Normalized() Color {
	return Color{H: WrapHue(c.H), L: clamp01(c.L), S: clamp01(c.S)}
}

// RGB converts to linear RGB using the HSL model.
func (c Color) RGB() RGB {
	n := c.Normalized()
	cc := colorful.Hsl(n.H*360.0, n.S, n.L)
	return RGB{R: float32(clamp01(cc.R)), G: float32(clamp01(cc.G)), B: float32(clamp01(cc.B))}
}

// Finite reports whether every channel is a real number.
func (c Color) Finite() bool {
	return isFinite(c.H) && isFinite(c.L) && isFinite(c.S)
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
