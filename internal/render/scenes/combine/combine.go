package combine

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

const Kind = "combine"

// Combine renders two presets from a layer's playlist and freezes a transition
// between them at a fixed progress.
type Combine struct {
	preset.Base
	host     preset.Host
	layer    string
	first    string
	second   string
	mode     string
	progress float64

	strategy transition.Strategy
	resolved bool
	a, b     preset.Preset
	bufA     render.Buffer
	bufB     render.Buffer
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	n := ctx.Pixels()
	return &Combine{
		Base:     preset.NewBase(name),
		host:     ctx.Host,
		layer:    ctx.String("layer", ""),
		first:    ctx.String("first", ""),
		second:   ctx.String("second", ""),
		mode:     ctx.String("transition_mode", "Additive Blend"),
		progress: ctx.Param("transition_progress", 0.5),
		bufA:     render.NewBuffer(n),
		bufB:     render.NewBuffer(n),
	}, nil
}

// Reset re-resolves the strategy and sources on the next tick.
func (c *Combine) Reset() {
	c.resolved = false
	c.strategy = nil
}

func (c *Combine) resolve() {
	c.resolved = true
	if c.host == nil {
		return
	}
	s, err := c.host.TransitionByName(c.layer, c.mode)
	if err != nil {
		log.Warn().Err(err).Str("preset", c.Name()).Msg("combine transition unavailable")
	}
	c.strategy = s
	c.a = c.lookup(c.first)
	c.b = c.lookup(c.second)
}

// lookup refuses other combines, itself included; two combines naming each
// other would recurse through Tick and Draw.
func (c *Combine) lookup(name string) preset.Preset {
	p, ok := c.host.PresetByName(c.layer, name)
	if !ok {
		return nil
	}
	if _, nested := p.(*Combine); nested {
		log.Warn().Str("preset", c.Name()).Str("source", name).Msg("combine cannot source another combine")
		return nil
	}
	return p
}

func (c *Combine) Tick(dt float64) {
	if !c.resolved {
		c.resolve()
	}
	if c.a == nil || c.b == nil {
		return
	}
	c.a.Tick(dt)
	c.b.Tick(dt)
}

func (c *Combine) Draw(dst render.Buffer) render.Buffer {
	if c.a == nil || c.b == nil || c.strategy == nil {
		dst.Clear()
		return dst
	}
	if len(c.bufA) != len(dst) {
		c.bufA = render.NewBuffer(len(dst))
		c.bufB = render.NewBuffer(len(dst))
	}
	// strategies expect to run start to end; rewind before sampling a fixed point
	c.strategy.Reset()
	a := c.a.Draw(c.bufA)
	b := c.b.Draw(c.bufB)
	return c.strategy.Blend(a, b, c.progress)
}
