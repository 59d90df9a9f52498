package calib

import (
	"math"
	"sort"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "calib"

type Mode string

const (
	// PanelSweep colors each Z panel red, green, blue in turn, dark to the right, white at the top.
	PanelSweep Mode = "panel_sweep"
	// IndexSweep lights one pixel at a time in buffer order.
	IndexSweep Mode = "index_sweep"
	// RGBChannels flashes the whole cube red, green, blue.
	RGBChannels Mode = "rgb_channels"
	// PlaneZ lights one Z panel at a time in cyan.
	PlaneZ Mode = "plane_z"
)

var channelHue = [3]float64{0, 1.0 / 3, 2.0 / 3}

// Renderer is a wiring check. It refuses to be cut away from until its sweep
// has run to the end.
type Renderer struct {
	preset.Base
	mode Mode
	rate float64 // steps per second
	hold float64 // seconds PanelSweep stays locked

	lrPow, topPow, topMix float64

	nx, ny []float64
	panel  []int
	panels int

	t    float64
	step int
}

func New(name string, scene render.Scene, mode Mode) *Renderer {
	r := &Renderer{
		Base:   preset.NewBase(name),
		mode:   mode,
		rate:   10,
		hold:   5,
		lrPow:  1.2,
		topPow: 0.6,
		topMix: 1.0,
	}
	r.bind(scene)
	return r
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	r := New(name, ctx.Scene, Mode(ctx.String("mode", string(PanelSweep))))
	r.rate = ctx.Param("rate", r.rate)
	r.hold = ctx.Param("hold", r.hold)
	r.lrPow = ctx.Param("lr_gamma", r.lrPow)
	r.topPow = ctx.Param("top_white_pow", r.topPow)
	r.topMix = clamp01(ctx.Param("top_white_mix", r.topMix))
	return r, nil
}

// bind derives normalized x/y and a panel number per pixel from scene geometry.
func (r *Renderer) bind(scene render.Scene) {
	if scene == nil {
		return
	}
	n := scene.PixelCount()
	lo, hi := scene.Extents()
	norm := func(v, min, max float64) float64 {
		if max <= min {
			return 0
		}
		return (v - min) / (max - min)
	}
	zs := map[float64]bool{}
	for i := 0; i < n; i++ {
		zs[scene.Position(i).Z] = true
	}
	levels := make([]float64, 0, len(zs))
	for z := range zs {
		levels = append(levels, z)
	}
	sort.Float64s(levels)
	r.panels = len(levels)

	r.nx = make([]float64, n)
	r.ny = make([]float64, n)
	r.panel = make([]int, n)
	for i := 0; i < n; i++ {
		p := scene.Position(i)
		r.nx[i] = norm(p.X, lo.X, hi.X)
		r.ny[i] = norm(p.Y, lo.Y, hi.Y)
		r.panel[i] = sort.SearchFloat64s(levels, p.Z)
	}
}

func (r *Renderer) Mode() Mode { return r.mode }

func (r *Renderer) Reset() {
	r.t = 0
	r.step = 0
}

func (r *Renderer) Tick(dt float64) {
	r.t += dt
	r.step = int(r.t * r.rate)
}

// total is how many steps the sweep takes.
func (r *Renderer) total() int {
	switch r.mode {
	case IndexSweep:
		return len(r.panel)
	case RGBChannels:
		return 3
	case PlaneZ:
		return r.panels
	default:
		return int(math.Ceil(r.hold * r.rate))
	}
}

// CanTransition is false until the sweep is complete.
func (r *Renderer) CanTransition() bool { return r.step >= r.total() }

func (r *Renderer) Draw(dst render.Buffer) render.Buffer {
	dst.Clear()
	switch r.mode {
	case IndexSweep:
		if r.step < len(dst) {
			dst[r.step] = render.White
		}
	case RGBChannels:
		dst.Fill(render.Color{H: channelHue[r.step%3], L: 0.5, S: 1})
	case PlaneZ:
		for i := range dst {
			if i < len(r.panel) && r.panel[i] == r.step {
				dst[i] = render.Color{H: 0.5, L: 0.5, S: 1}
			}
		}
	default:
		r.panelSweep(dst)
	}
	return dst
}

func (r *Renderer) panelSweep(dst render.Buffer) {
	for i := range dst {
		if i >= len(r.panel) {
			return
		}
		// left to right: darken along a curve
		lr := 1.0 - math.Pow(r.nx[i], r.lrPow)
		// bottom to top: pull toward white, fully white on the top row
		bt := math.Pow(r.ny[i], r.topPow) * r.topMix
		if r.ny[i] >= 1 {
			bt = 1
		}
		dst[i] = render.Color{
			H: channelHue[r.panel[i]%3],
			L: 0.5*lr + (1-0.5*lr)*bt,
			S: 1 - bt,
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
