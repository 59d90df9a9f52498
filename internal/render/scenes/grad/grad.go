package grad

import (
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "gradient"

// Grad renders a spatial hue gradient with optional time animation.
// Params:
//   - "speed" (default 0): hue turns per second
//   - "axis"  (0=X,1=Y,2=Z; default 2)
//   - "span"  (default 1): hue turns across the cube
//   - "hue"   (default 0): starting hue
type Grad struct {
	preset.Base
	axis  int
	speed float64
	span  float64
	hue   float64
	phase float64
	coord []float64
}

func New(name string, scene render.Scene, axis int) *Grad {
	g := &Grad{Base: preset.NewBase(name), axis: axis, span: 1}
	g.bind(scene)
	return g
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	g := New(name, ctx.Scene, int(ctx.Param("axis", 2)))
	g.speed = ctx.Param("speed", 0)
	g.span = ctx.Param("span", 1)
	g.hue = ctx.Param("hue", 0)
	return g, nil
}

// bind precomputes each pixel's normalized coordinate along the axis.
func (g *Grad) bind(scene render.Scene) {
	if scene == nil {
		return
	}
	lo, hi := scene.Extents()
	pick := func(v render.Vec3) float64 {
		switch g.axis {
		case 0:
			return v.X
		case 1:
			return v.Y
		default:
			return v.Z
		}
	}
	min, size := pick(lo), pick(hi)-pick(lo)
	g.coord = make([]float64, scene.PixelCount())
	for i := range g.coord {
		if size > 0 {
			g.coord[i] = (pick(scene.Position(i)) - min) / size
		}
	}
}

func (g *Grad) Reset() { g.phase = 0 }

func (g *Grad) Tick(dt float64) {
	g.phase += dt * g.speed
	g.SetAll(render.Color{H: render.WrapHue(g.hue + g.phase), L: 0.5, S: 1})
}

func (g *Grad) Draw(dst render.Buffer) render.Buffer {
	for i := range dst {
		v := 0.0
		if i < len(g.coord) {
			v = g.coord[i]
		}
		dst[i] = render.Color{H: g.hue + g.phase + v*g.span, L: 0.5, S: 1}
	}
	return dst
}
