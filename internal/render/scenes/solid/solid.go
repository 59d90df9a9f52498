package solid

import (
	"math"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "solid"

// Solid fills the cube with a single color.
// It supports named colors and an optional "pulse_hz" param that modulates brightness.
type Solid struct {
	preset.Base
	c       render.Color
	pulseHz float64
	t       float64
}

func New(name string, c render.Color) *Solid {
	return &Solid{Base: preset.NewBase(name), c: c}
}

// Named colors accepted by the "color" string knob.
var Named = map[string]render.Color{
	"red":   {H: 0, L: 0.5, S: 1},
	"green": {H: 1.0 / 3, L: 0.5, S: 1},
	"blue":  {H: 2.0 / 3, L: 0.5, S: 1},
	"white": render.White,
	"black": render.Black,
}

// Factory builds a Solid from playlist knobs: color (name) or color.h/.l/.s, and pulse_hz.
func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	c := ctx.Color("color", Named["white"])
	if n, ok := Named[ctx.String("color", "")]; ok {
		c = n
	}
	s := New(name, c)
	s.pulseHz = ctx.Param("pulse_hz", 0)
	return s, nil
}

func (s *Solid) Color() render.Color { return s.c }

func (s *Solid) Reset() { s.t = 0 }

func (s *Solid) Tick(dt float64) {
	s.t += dt
	s.SetAll(s.current())
}

func (s *Solid) current() render.Color {
	c := s.c
	if s.pulseHz > 0 {
		c.L *= 0.5 + 0.5*math.Sin(2*math.Pi*s.pulseHz*s.t)
	}
	return c
}

func (s *Solid) Draw(dst render.Buffer) render.Buffer {
	dst.Fill(s.current())
	return dst
}
