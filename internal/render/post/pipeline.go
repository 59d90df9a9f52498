package post

import "github.com/coreman2200/funtimes-arcaluminis/internal/render"

// Pipeline turns a normalized HLS frame into packed 8-bit RGB for a driver:
// HLS -> RGB -> limiter -> pack. Scratch space is reused across frames.
type Pipeline struct {
	Power render.Power
	// Order maps output slot -> buffer pixel. Nil means identity.
	Order []int

	rgb []render.RGB
	out []byte
}

func New(p render.Power, order []int) *Pipeline {
	return &Pipeline{Power: p, Order: order}
}

// Apply returns the packed frame. The returned slice is owned by the pipeline
// and is overwritten by the next call.
func (p *Pipeline) Apply(buf render.Buffer) []byte {
	n := len(buf)
	if len(p.rgb) != n {
		p.rgb = make([]render.RGB, n)
		p.out = make([]byte, n*3)
	}
	if p.Order == nil {
		render.ToRGB(p.rgb, buf)
	} else {
		for slot := 0; slot < n && slot < len(p.Order); slot++ {
			px := p.Order[slot]
			if px >= 0 && px < n {
				p.rgb[slot] = buf[px].RGB()
			}
		}
	}
	render.Limit(p.rgb, p.Power)
	render.Pack(p.out, p.rgb)
	return p.out
}

// ApplyCommands expands headless preset commands into a packed frame of n pixels.
func (p *Pipeline) ApplyCommands(cmds []render.Command, n int) []byte {
	buf := render.NewBuffer(n)
	for _, c := range cmds {
		if c.Pixel < 0 {
			buf.Fill(c.Color)
		} else if c.Pixel < n {
			buf[c.Pixel] = c.Color
		}
	}
	return p.Apply(buf)
}
