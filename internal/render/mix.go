package render

import "fmt"

// BlendMode selects how Composite folds src onto dst.
type BlendMode uint8

const (
	// BlendOverwrite replaces dst wherever src is lit (L > 0). Unlit src pixels leave dst alone.
	BlendOverwrite BlendMode = iota
	// BlendAlpha interpolates dst toward src by mix.
	BlendAlpha
	// BlendAdd adds src lightness scaled by mix; hue and saturation follow the brighter pixel.
	BlendAdd
)

var blendNames = [...]string{BlendOverwrite: "overwrite", BlendAlpha: "alpha", BlendAdd: "add"}

func (m BlendMode) String() string {
	if int(m) < len(blendNames) {
		return blendNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", m)
}

// ParseBlendMode resolves a config name. "" is overwrite.
func ParseBlendMode(name string) (BlendMode, error) {
	if name == "" {
		return BlendOverwrite, nil
	}
	for i, n := range blendNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return BlendOverwrite, fmt.Errorf("blend mode %q: want overwrite, alpha or add", name)
}

// LayerMix is the fixed mix factor used when compositing layers.
const LayerMix = 0.5

// Composite blends src onto dst in place. Only min(len(dst), len(src)) pixels are touched.
func Composite(dst, src Buffer, mode BlendMode, mix float64) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	switch mode {
	case BlendOverwrite:
		for i := 0; i < n; i++ {
			if src[i].L > 0 {
				dst[i] = src[i]
			}
		}
	case BlendAlpha:
		Mix(dst[:n], dst[:n], src[:n], mix)
	case BlendAdd:
		for i := 0; i < n; i++ {
			add := src[i].L * mix
			if add > dst[i].L {
				dst[i].H = src[i].H
				dst[i].S = src[i].S
			}
			dst[i].L += add
		}
	}
}

// Mix blends two buffers (a,b) into dst using alpha (0..1). Hue takes the shortest way
// around the wheel. alpha <= 0 reproduces a and alpha >= 1 reproduces b exactly.
func Mix(dst, a, b Buffer, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i] = Lerp(a[i], b[i], alpha)
	}
}

// Lerp interpolates between two colors; hue travels the short arc.
func Lerp(a, b Color, t float64) Color {
	dh := WrapHue(b.H) - WrapHue(a.H)
	if dh > 0.5 {
		dh -= 1
	} else if dh < -0.5 {
		dh += 1
	}
	return Color{
		H: a.H + dh*t,
		L: a.L + (b.L-a.L)*t,
		S: a.S + (b.S-a.S)*t,
	}
}
