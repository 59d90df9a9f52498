package ocean

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

const Kind = "ocean"

// Ocean runs a damped wave heightfield over the cube's XZ footprint and
// paints water below the surface and sky above it. Onsets drop a splash.
type Ocean struct {
	preset.Base
	host preset.Host
	rng  *rand.Rand

	// persistent sim state (XZ footprint)
	H    []float64 // height
	V    []float64 // velocity
	X, Z int

	cell []int     // pixel -> heightfield cell
	yn   []float64 // pixel -> normalized height 0..1

	t float64

	tideAmp, tidePeriod     float64
	waveSpeed, damping      float64
	wind, choppy, foaminess float64
	sea, waveAmp, hMax      float64
	waterHue, skyHue        float64
	splash                  float64
}

func Factory(name string, ctx preset.Context) (preset.Preset, error) {
	grid := int(ctx.Param("grid", 16))
	if grid < 2 {
		grid = 2
	}
	o := &Ocean{
		Base:       preset.NewBase(name),
		host:       ctx.Host,
		rng:        rand.New(rand.NewSource(int64(ctx.Param("seed", 1)))),
		X:          grid,
		Z:          grid,
		tideAmp:    ctx.Param("tide_amp", 0.22),
		tidePeriod: ctx.Param("tide_period", 180),
		waveSpeed:  ctx.Param("wave_speed", 1.1),
		damping:    ctx.Param("damping", 0.012),
		wind:       ctx.Param("wind", 0.08),
		choppy:     ctx.Param("choppiness", 0.45),
		foaminess:  ctx.Param("foaminess", 0.18),
		sea:        clamp01(ctx.Param("sea_level", 0.45)),
		waveAmp:    ctx.Param("wave_amp", 0.10),
		hMax:       clamp01(ctx.Param("h_max", 0.35)),
		waterHue:   ctx.Param("water_hue", 0.56),
		skyHue:     ctx.Param("sky_hue", 0.62),
		splash:     ctx.Param("splash", 0.4),
	}
	o.bind(ctx.Scene)
	o.Reset()
	return o, nil
}

// bind bins every pixel into a heightfield cell from its X/Z position.
func (o *Ocean) bind(scene render.Scene) {
	if scene == nil {
		return
	}
	lo, hi := scene.Extents()
	norm := func(v, min, max float64) float64 {
		if max <= min {
			return 0
		}
		return (v - min) / (max - min)
	}
	n := scene.PixelCount()
	o.cell = make([]int, n)
	o.yn = make([]float64, n)
	for i := 0; i < n; i++ {
		p := scene.Position(i)
		x := clampi(int(norm(p.X, lo.X, hi.X)*float64(o.X-1)+0.5), 0, o.X-1)
		z := clampi(int(norm(p.Z, lo.Z, hi.Z)*float64(o.Z-1)+0.5), 0, o.Z-1)
		o.cell[i] = o.idx(x, z)
		o.yn[i] = norm(p.Y, lo.Y, hi.Y)
	}
}

func (o *Ocean) Reset() {
	o.H = make([]float64, o.X*o.Z)
	o.V = make([]float64, o.X*o.Z)
	seedHeights(o.H, o.X, o.Z)
	o.t = 0
}

func (o *Ocean) Tick(dt float64) {
	o.t += dt
	if o.host != nil && o.host.IsOnset() {
		o.V[o.rng.Intn(len(o.V))] += o.splash
	}
	// fixed timestep for stability, decoupled from the frame dt
	o.stepSim(0.016, o.waveSpeed, o.damping, o.wind, o.choppy)
	o.settle()
}

// settle removes the mean height and clips to +/- hMax so the field never drifts.
func (o *Ocean) settle() {
	n := len(o.H)
	var sum float64
	for _, h := range o.H {
		sum += h
	}
	mean := sum / float64(n)
	for i := range o.H {
		o.H[i] = clamp(o.H[i]-mean, -o.hMax, o.hMax)
	}
}

func (o *Ocean) Draw(dst render.Buffer) render.Buffer {
	tide := o.tideAmp * math.Sin(2*math.Pi*o.t/math.Max(1e-6, o.tidePeriod))
	level := clamp01(o.sea + tide)
	for i := range dst {
		if i >= len(o.cell) {
			dst[i] = render.Black
			continue
		}
		c := o.cell[i]
		surf := clamp01(level + o.waveAmp*o.H[c])
		y := o.yn[i]
		if y > surf {
			// sky darkens toward the top
			dst[i] = render.Color{H: o.skyHue, L: 0.05 + 0.15*(1-y), S: 0.8}
			continue
		}
		depth := clamp01((surf - y) * 4)
		col := render.Color{H: o.waterHue + 0.04*depth, L: 0.45 - 0.3*depth, S: 0.85}
		near := 1 - depth
		if o.foamy(c) && near > 0.5 {
			col.L += 0.4 * near
			col.S -= 0.7 * near
		}
		dst[i] = col
	}
	return dst
}

// ---- sim helpers ----

func (o *Ocean) idx(x, z int) int { return z*o.X + x }

func (o *Ocean) stepSim(dt, c, damping, wind, choppy float64) {
	X, Z := o.X, o.Z

	// discrete laplacian on H accelerates V
	for z := 0; z < Z; z++ {
		for x := 0; x < X; x++ {
			i := o.idx(x, z)
			hc := o.H[i]
			hl := o.H[o.idx(clampi(x-1, 0, X-1), z)]
			hr := o.H[o.idx(clampi(x+1, 0, X-1), z)]
			hd := o.H[o.idx(x, clampi(z-1, 0, Z-1))]
			hu := o.H[o.idx(x, clampi(z+1, 0, Z-1))]
			lap := hl + hr + hd + hu - 4.0*hc
			o.V[i] += c * c * lap * dt
			o.V[i] *= 1.0 - damping
		}
	}
	// a little wind chop with a moving phase
	for z := 0; z < Z; z++ {
		for x := 0; x < X; x++ {
			ph := math.Sin(0.11*float64(x) + 0.13*float64(z) + 1.7*choppy + o.t)
			o.V[o.idx(x, z)] += wind * 0.02 * ph
		}
	}
	for i := range o.H {
		o.H[i] += o.V[i] * dt
	}
}

func (o *Ocean) slope(i int) float64 {
	x, z := i%o.X, i/o.X
	hl := o.H[o.idx(clampi(x-1, 0, o.X-1), z)]
	hr := o.H[o.idx(clampi(x+1, 0, o.X-1), z)]
	hd := o.H[o.idx(x, clampi(z-1, 0, o.Z-1))]
	hu := o.H[o.idx(x, clampi(z+1, 0, o.Z-1))]
	return math.Abs(hr-hl) + math.Abs(hu-hd)
}

// foamy is true where the surface is steep or fast; more foam as foaminess rises.
func (o *Ocean) foamy(i int) bool {
	return o.slope(i)+math.Abs(o.V[i]) > 0.15+0.8*(1.0-o.foaminess)
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clampi(x, a, b int) int {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// seed small bumps
func seedHeights(H []float64, X, Z int) {
	for z := 0; z < Z; z++ {
		for x := 0; x < X; x++ {
			H[z*X+x] = math.Sin(float64(37*x+57*z))*0.03 + math.Sin(float64(11*x+23*z))*0.02
		}
	}
}
