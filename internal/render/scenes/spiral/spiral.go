package spiral

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "spiral"

// fader resolution; hues are quantized to it
const steps = 256

// Spiral is a hue gradient wound around the cube's vertical axis. Every onset
// kicks the inner hue forward by hue_step.
type Spiral struct {
	preset.Base
	host preset.Host

	speed, angleWidth, radiusWidth float64
	waveWidth, wavePeriod          float64
	waveSpeed, hueStep             float64
	fader                          *render.Fader

	hue   float64
	wave  float64
	dist  []float64
	angle []float64
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	s := &Spiral{
		Base:        preset.NewBase(name),
		host:        ctx.Host,
		speed:       ctx.Param("speed", 0.3),
		angleWidth:  ctx.Param("angle_hue_width", 2.0),
		radiusWidth: ctx.Param("radius_hue_width", 1.5),
		waveWidth:   ctx.Param("wave_hue_width", 0.1),
		wavePeriod:  ctx.Param("wave_hue_period", 0.1),
		waveSpeed:   ctx.Param("wave_speed", 0.1),
		hueStep:     ctx.Param("hue_step", 0.1),
		hue:         rand.Float64(),
		wave:        rand.Float64(),
	}
	start := ctx.Color("color_start", render.Color{H: 0, L: 0.5, S: 1})
	end := ctx.Color("color_end", render.Color{H: 1, L: 0.5, S: 1})
	s.fader = render.NewFader([]render.Color{start, end, start}, steps)
	s.bind(ctx.Scene)
	return s, nil
}

// bind caches each pixel's normalized radius and angle around the centroid in the XZ plane.
func (s *Spiral) bind(scene render.Scene) {
	if scene == nil {
		return
	}
	n := scene.PixelCount()
	c := scene.Centroid()
	s.dist = make([]float64, n)
	s.angle = make([]float64, n)
	maxD := 0.0
	for i := 0; i < n; i++ {
		p := scene.Position(i)
		dx, dz := p.X-c.X, p.Z-c.Z
		s.dist[i] = math.Hypot(dx, dz)
		s.angle[i] = (math.Pi + math.Atan2(dz, dx)) / (2 * math.Pi)
		if s.dist[i] > maxD {
			maxD = s.dist[i]
		}
	}
	if maxD > 0 {
		for i := range s.dist {
			s.dist[i] /= maxD
		}
	}
}

func (s *Spiral) Tick(dt float64) {
	if s.host != nil && s.host.IsOnset() {
		s.hue += s.hueStep
	}
	s.hue = math.Mod(s.hue+dt*s.speed, 1)
	s.wave += dt * s.waveSpeed
}

func (s *Spiral) Draw(dst render.Buffer) render.Buffer {
	for i := range dst {
		if i >= len(s.dist) {
			dst[i] = render.Black
			continue
		}
		d := s.dist[i]
		angle := math.Mod(1+s.angle[i]+math.Sin(s.wave+d*2*math.Pi*s.wavePeriod)*s.waveWidth, 1)
		h := s.hue + s.radiusWidth*d + angle*s.angleWidth
		h = math.Mod(math.Floor(h*steps)/steps, 1)
		if h < 0 {
			h++
		}
		dst[i] = s.fader.At(h)
	}
	return dst
}
