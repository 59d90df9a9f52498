package beat

import (
	"math"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "beat"

// rings are dropped once they travel this far (scene units)
const maxDistance = 1000

type ring struct {
	pos    render.Vec3
	radius float64
	step   int
}

// Circles spawns an expanding ring at an emitter's reported position on every
// beat from that emitter.
type Circles struct {
	preset.Base
	host  preset.Host
	scene render.Scene
	speed float64
	width float64
	fader *render.Fader
	rings []ring
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	start := ctx.Color("color_start", render.Color{H: 0, L: 0.5, S: 1})
	end := ctx.Color("color_end", render.Color{H: 1, L: 0.5, S: 1})
	return &Circles{
		Base:  preset.NewBase(name),
		host:  ctx.Host,
		scene: ctx.Scene,
		speed: ctx.Param("speed", 100),
		width: ctx.Param("width", 5),
		fader: render.NewFader([]render.Color{start, end, start}, 256),
	}, nil
}

func (c *Circles) Reset() { c.rings = c.rings[:0] }

// Rings is the number of live rings.
func (c *Circles) Rings() int { return len(c.rings) }

func (c *Circles) OnFeature(f audio.Feature) {
	if f.Feature != "beat" || !f.Truthy() || c.host == nil {
		return
	}
	pos, ok := c.host.EmitterPosition(f.Group)
	if !ok {
		return
	}
	c.rings = append(c.rings, ring{pos: pos})
}

func (c *Circles) Tick(dt float64) {
	live := c.rings[:0]
	for _, r := range c.rings {
		r.radius += dt * c.speed
		r.step++
		if r.radius <= maxDistance {
			live = append(live, r)
		}
	}
	c.rings = live
}

func (c *Circles) Draw(dst render.Buffer) render.Buffer {
	dst.Clear()
	if c.scene == nil {
		return dst
	}
	steps := float64(c.fader.Steps())
	for i := range dst {
		p := c.scene.Position(i)
		for _, r := range c.rings {
			d := math.Sqrt((p.X-r.pos.X)*(p.X-r.pos.X) + (p.Y-r.pos.Y)*(p.Y-r.pos.Y) + (p.Z-r.pos.Z)*(p.Z-r.pos.Z))
			if math.Abs(d-r.radius) >= c.width {
				continue
			}
			col := c.fader.At(math.Mod(float64(r.step), steps) / steps)
			dst[i].H += col.H
			dst[i].L = 0.5
			dst[i].S = 1
		}
	}
	return dst
}
