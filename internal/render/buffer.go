package render

import (
	"errors"
	"fmt"
)

// ErrNonFinite is returned by CheckFinite when a buffer holds NaN or Inf.
var ErrNonFinite = errors.New("non-finite value in buffer")

// Buffer is one color per fixture pixel. Its length is fixed when the scene is bound.
type Buffer []Color

func NewBuffer(n int) Buffer {
	if n < 0 {
		n = 0
	}
	return make(Buffer, n)
}

// Clear zeroes every pixel to black.
func (b Buffer) Clear() {
	for i := range b {
		b[i] = Black
	}
}

// Fill sets every pixel to c.
func (b Buffer) Fill(c Color) {
	for i := range b {
		b[i] = c
	}
}

// Dim scales lightness by f.
func (b Buffer) Dim(f float64) {
	for i := range b {
		b[i].L *= f
	}
}

// WrapHue folds every hue into [0,1).
func (b Buffer) WrapHue() {
	for i := range b {
		b[i].H = WrapHue(b[i].H)
	}
}

// ClampLS clamps lightness and saturation to [0,1].
func (b Buffer) ClampLS() {
	for i := range b {
		b[i].L = clamp01(b[i].L)
		b[i].S = clamp01(b[i].S)
	}
}

// Normalize is the output stage: dimmer (only when below 1), hue wrap, then L/S clamp.
func (b Buffer) Normalize(dimmer float64) {
	if dimmer < 1.0 {
		b.Dim(dimmer)
	}
	b.WrapHue()
	b.ClampLS()
}

// CheckFinite returns ErrNonFinite with the first offending pixel.
func (b Buffer) CheckFinite() error {
	for i := range b {
		if !b[i].Finite() {
			return fmt.Errorf("pixel %d %+v: %w", i, b[i], ErrNonFinite)
		}
	}
	return nil
}
