package transition

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

func init() {
	Register("Fade", func(Env) Strategy { return &Fade{name: "Fade", ease: "linear"} })
	Register("Smooth Fade", func(Env) Strategy { return &Fade{name: "Smooth Fade", ease: "smooth"} })
	Register("Additive Blend", func(Env) Strategy { return &Additive{} })
	Register("Mask Blend", func(Env) Strategy { return &Mask{} })
	Register("Wipe", func(env Env) Strategy { return &Wipe{scene: env.Scene} })
	Register("Dissolve", func(env Env) Strategy { return &Dissolve{rng: env.Rand} })
}

// Fade crossfades lightness and saturation, hue along the short arc.
type Fade struct {
	name string
	ease string
	out  render.Buffer
}

func (f *Fade) Name() string { return f.name }
func (f *Fade) Reset()       {}

func (f *Fade) Blend(a, b render.Buffer, progress float64) render.Buffer {
	n := pixels(a, b)
	f.out = scratch(f.out, n)
	render.Mix(f.out, a[:n], b[:n], Ease(f.ease, progress))
	return f.out
}

// Additive keeps both frames at full strength through the middle of the
// transition, so the two looks briefly stack.
type Additive struct{ out render.Buffer }

func (*Additive) Name() string { return "Additive Blend" }
func (*Additive) Reset()       {}

func (t *Additive) Blend(a, b render.Buffer, progress float64) render.Buffer {
	n := pixels(a, b)
	t.out = scratch(t.out, n)
	if progress <= 0 {
		copy(t.out, a[:n])
		return t.out
	}
	if progress >= 1 {
		copy(t.out, b[:n])
		return t.out
	}
	// each side holds full weight through the first or last half
	wa := math.Min(1, 2*(1-progress))
	wb := math.Min(1, 2*progress)
	for i := 0; i < n; i++ {
		la, lb := a[i].L*wa, b[i].L*wb
		c := a[i]
		if lb > la {
			c = b[i]
		}
		c.L = la + lb
		t.out[i] = c
	}
	return t.out
}

// Mask approximates color subtraction: lightness comes from a, hue and
// saturation from b. It ignores progress, so its endpoints are not exact.
type Mask struct{ out render.Buffer }

func (*Mask) Name() string { return "Mask Blend" }
func (*Mask) Reset()       {}

func (t *Mask) Blend(a, b render.Buffer, _ float64) render.Buffer {
	n := pixels(a, b)
	t.out = scratch(t.out, n)
	for i := 0; i < n; i++ {
		t.out[i] = render.Color{H: b[i].H, L: a[i].L, S: b[i].S}
	}
	return t.out
}

// Wipe sweeps b across the scene along X. Without a scene it sweeps by pixel index.
type Wipe struct {
	scene render.Scene
	pos   []float64
	out   render.Buffer
}

func (*Wipe) Name() string { return "Wipe" }
func (t *Wipe) Reset()     { t.pos = nil }

func (t *Wipe) positions(n int) []float64 {
	if len(t.pos) == n {
		return t.pos
	}
	t.pos = make([]float64, n)
	if t.scene != nil && t.scene.PixelCount() >= n {
		lo, hi := t.scene.Extents()
		span := hi.X - lo.X
		for i := range t.pos {
			if span > 0 {
				t.pos[i] = (t.scene.Position(i).X - lo.X) / span
			}
		}
		return t.pos
	}
	for i := range t.pos {
		t.pos[i] = float64(i) / float64(n)
	}
	return t.pos
}

func (t *Wipe) Blend(a, b render.Buffer, progress float64) render.Buffer {
	n := pixels(a, b)
	t.out = scratch(t.out, n)
	pos := t.positions(n)
	for i := 0; i < n; i++ {
		if progress >= 1 || pos[i] < progress {
			t.out[i] = b[i]
		} else {
			t.out[i] = a[i]
		}
	}
	return t.out
}

// Dissolve flips pixels from a to b in a random order picked at Reset.
type Dissolve struct {
	rng    *rand.Rand
	thresh []float64
	out    render.Buffer
}

func (*Dissolve) Name() string { return "Dissolve" }
func (t *Dissolve) Reset()     { t.thresh = nil }

func (t *Dissolve) Blend(a, b render.Buffer, progress float64) render.Buffer {
	n := pixels(a, b)
	t.out = scratch(t.out, n)
	if len(t.thresh) != n {
		t.thresh = make([]float64, n)
		for i := range t.thresh {
			if t.rng != nil {
				t.thresh[i] = t.rng.Float64()
			} else {
				t.thresh[i] = rand.Float64()
			}
		}
	}
	for i := 0; i < n; i++ {
		if t.thresh[i] < progress {
			t.out[i] = b[i]
		} else {
			t.out[i] = a[i]
		}
	}
	return t.out
}
