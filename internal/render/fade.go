package render

import "math"

// Fader is a quantized color ramp through a list of stops, like a palette
// lookup table. At(0) is the first stop and At(1) the last.
type Fader struct {
	lut []Color
}

// NewFader bakes steps entries spread evenly through stops.
func NewFader(stops []Color, steps int) *Fader {
	if steps < 2 {
		steps = 2
	}
	f := &Fader{lut: make([]Color, steps)}
	switch len(stops) {
	case 0:
		return f
	case 1:
		for i := range f.lut {
			f.lut[i] = stops[0]
		}
		return f
	}
	segs := float64(len(stops) - 1)
	for i := range f.lut {
		x := float64(i) / float64(steps-1) * segs
		k := int(math.Floor(x))
		if k >= len(stops)-1 {
			k = len(stops) - 2
		}
		f.lut[i] = Lerp(stops[k], stops[k+1], x-float64(k))
	}
	return f
}

// At samples the ramp; x is clamped to [0,1].
func (f *Fader) At(x float64) Color {
	if len(f.lut) == 0 {
		return Black
	}
	i := int(clamp01(x) * float64(len(f.lut)-1))
	return f.lut[i]
}

// Steps is the ramp resolution.
func (f *Fader) Steps() int { return len(f.lut) }
