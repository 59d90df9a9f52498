package mixer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/playlist"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

type lineScene struct{ n int }

func (s lineScene) PixelCount() int { return s.n }
func (s lineScene) Position(i int) render.Vec3 {
	return render.Vec3{X: float64(i)}
}
func (s lineScene) Centroid() render.Vec3 { return render.Vec3{X: float64(s.n-1) / 2} }
func (s lineScene) Extents() (render.Vec3, render.Vec3) {
	return render.Vec3{}, render.Vec3{X: float64(s.n - 1)}
}

// stub paints a constant color and records what the layer asked of it.
type stub struct {
	preset.Base
	color   render.Color
	locked  bool
	ticks   int
	resets  int
	dt      float64
	feature []audio.Feature
	onTick  func()
}

func newStub(name string, c render.Color) *stub {
	return &stub{Base: preset.NewBase(name), color: c}
}

func (s *stub) Tick(dt float64) {
	s.ticks++
	s.dt += dt
	s.SetAll(s.color)
	if s.onTick != nil {
		s.onTick()
	}
}

func (s *stub) Draw(dst render.Buffer) render.Buffer {
	dst.Fill(s.color)
	return dst
}

func (s *stub) CanTransition() bool       { return !s.locked }
func (s *stub) Reset()                    { s.resets++ }
func (s *stub) OnFeature(f audio.Feature) { s.feature = append(s.feature, f) }

type capture struct {
	frames   []render.Buffer
	commands [][]render.Command
}

func (c *capture) WriteBuffer(buf render.Buffer) error {
	c.frames = append(c.frames, append(render.Buffer(nil), buf...))
	return nil
}

func (c *capture) WriteCommands(cmds []render.Command) error {
	c.commands = append(c.commands, append([]render.Command(nil), cmds...))
	return nil
}

func (c *capture) last() render.Buffer {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }
func (c *clock) Advance(sec float64) {
	c.t = c.t.Add(time.Duration(sec * float64(time.Second)))
}

// rig is a mixer on a fake clock; step advances the clock and ticks.
type rig struct {
	t   *testing.T
	m   *Mixer
	clk *clock
	out *capture
}

func newRig(t *testing.T, cfg Config, scene render.Scene) *rig {
	t.Helper()
	out := &capture{}
	m := New(cfg, scene, out)
	clk := &clock{t: time.Unix(1000, 0)}
	m.now = clk.Now
	m.lastTick = clk.t
	m.lastFrame = clk.t
	return &rig{t: t, m: m, clk: clk, out: out}
}

func playlistOf(presets ...preset.Preset) Playlist { return playlist.New(presets...) }

func (r *rig) layer(name string, cfg LayerConfig, presets ...preset.Preset) *Layer {
	r.t.Helper()
	l, err := NewLayer(name, playlistOf(presets...), cfg)
	require.NoError(r.t, err)
	require.NoError(r.t, r.m.AddLayer(l))
	return l
}

func (r *rig) step(sec float64) {
	r.t.Helper()
	r.clk.Advance(sec)
	require.NoError(r.t, r.m.Tick())
}

func featureOf(group, name string, v float64) audio.Feature {
	return audio.Feature{Group: group, Feature: name, Value: v, TimeReceived: time.Unix(1000, 0)}
}

func nan() float64 { return math.NaN() }

func inRange(c render.Color) bool {
	return c.H >= 0 && c.H < 1 && c.L >= 0 && c.L <= 1 && c.S >= 0 && c.S <= 1
}
