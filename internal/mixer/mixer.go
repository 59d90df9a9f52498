// Package mixer is the render scheduler: it ticks layers at a fixed rate,
// composites their buffers and hands the result to an output sink.
package mixer

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/playlist"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

// Output receives finished frames. WriteCommands is the headless fallback
// used when no scene is bound.
type Output interface {
	WriteBuffer(buf render.Buffer) error
	WriteCommands(cmds []render.Command) error
}

// Telemetry receives derived state once per tick.
type Telemetry interface {
	PublishTargets(targets []audio.Target)
}

// Config holds the scheduler knobs.
type Config struct {
	TickRate float64
	// OnsetHoldoff is the minimum gap in seconds between accepted onsets.
	OnsetHoldoff float64
	// A zero Dimmer and Speed pair means full brightness at normal speed.
	Dimmer float64
	Speed  float64
	Paused bool
	// Diagnostic scans every buffer for NaN/Inf and records the frame rate histogram.
	Diagnostic bool
	// QueueSize bounds the command queue. Zero means 256.
	QueueSize int
}

func (c Config) period() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return time.Duration(float64(time.Second) / rate)
}

// Mixer owns the layers and the tick loop.
//
// Fields below the "render goroutine" marker are touched only by Tick. Other
// goroutines talk to it through atomics, the onset mutex and Do.
type Mixer struct {
	cfg       Config
	scene     render.Scene
	out       Output
	telemetry Telemetry
	emitters  *audio.Registry
	now       func() time.Time

	layersMu sync.RWMutex
	layers   []*Layer

	cmds chan func(*Mixer)

	paused atomic.Bool
	frozen atomic.Bool
	dimmer atomic.Uint64
	speed  atomic.Uint64

	onsetMu   sync.Mutex
	onset     bool
	onsetSeq  uint64
	lastOnset time.Time

	statsMu sync.Mutex
	stats   Stats

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
	err     error

	// render goroutine
	master      render.Buffer
	lastTick    time.Time
	lastFrame   time.Time
	framePaused bool
	frameOnset  bool
	frameSeq    uint64
	onsetRead   bool
}

// New builds a mixer bound to scene. A nil scene runs headless: presets still
// tick but frames go out as command lists.
func New(cfg Config, scene render.Scene, out Output) *Mixer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	var centroid render.Vec3
	if scene != nil {
		centroid = scene.Centroid()
	}
	m := &Mixer{
		cfg:      cfg,
		scene:    scene,
		out:      out,
		emitters: audio.NewRegistry(centroid),
		now:      time.Now,
		cmds:     make(chan func(*Mixer), cfg.QueueSize),
	}
	dimmer, speed := cfg.Dimmer, cfg.Speed
	if dimmer == 0 && speed == 0 {
		dimmer, speed = 1, 1
	}
	m.SetGlobalDimmer(dimmer)
	m.SetGlobalSpeed(speed)
	m.paused.Store(cfg.Paused)
	m.master = render.NewBuffer(m.pixels())
	m.stats.Histogram = map[int]int{}
	return m
}

// SetTelemetry installs the per-tick telemetry sink. Call before Start.
func (m *Mixer) SetTelemetry(t Telemetry) { m.telemetry = t }

func (m *Mixer) Scene() render.Scene           { return m.scene }
func (m *Mixer) Emitters() *audio.Registry     { return m.emitters }
func (m *Mixer) Config() Config                { return m.cfg }
func (m *Mixer) TransitionEnv() transition.Env { return transition.Env{Scene: m.scene} }

func (m *Mixer) rendering() bool { return m.scene != nil }

func (m *Mixer) pixels() int {
	if m.scene == nil {
		return 0
	}
	return m.scene.PixelCount()
}

// AddLayer appends a layer. The first layer added is the default layer.
func (m *Mixer) AddLayer(l *Layer) error {
	m.layersMu.Lock()
	defer m.layersMu.Unlock()
	for _, have := range m.layers {
		if have.name == l.name {
			return fmt.Errorf("%q: %w", l.name, ErrDuplicateLayer)
		}
	}
	l.host = m
	l.checkFinite = m.cfg.Diagnostic
	if l.env.Scene == nil {
		l.env.Scene = m.scene
	}
	l.Resize(m.pixels())
	m.layers = append(m.layers, l)
	return nil
}

func (m *Mixer) LayerByName(name string) (*Layer, bool) {
	m.layersMu.RLock()
	defer m.layersMu.RUnlock()
	for _, l := range m.layers {
		if l.name == name {
			return l, true
		}
	}
	return nil, false
}

// DefaultLayer is the first layer, or nil before any layer is added.
func (m *Mixer) DefaultLayer() *Layer {
	m.layersMu.RLock()
	defer m.layersMu.RUnlock()
	if len(m.layers) == 0 {
		return nil
	}
	return m.layers[0]
}

// Layer resolves name, falling back to the default layer for "".
func (m *Mixer) Layer(name string) (*Layer, error) {
	if name == "" {
		if l := m.DefaultLayer(); l != nil {
			return l, nil
		}
		return nil, ErrNoLayer
	}
	if l, ok := m.LayerByName(name); ok {
		return l, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrNoLayer)
}

// SetConstantPreset pins the default layer to one of its presets and pauses
// the mixer. Call it before Start or through Do.
func (m *Mixer) SetConstantPreset(name string) error {
	l := m.DefaultLayer()
	if l == nil {
		return ErrNoLayer
	}
	p, ok := l.playlist.PresetByName(name)
	if !ok {
		return fmt.Errorf("constant preset %q: %w", name, ErrUnknownPreset)
	}
	l.SetPlaylist(playlist.New(p))
	m.Pause(true)
	log.Info().Str("preset", name).Msg("constant preset; mixer paused")
	return nil
}

func (m *Mixer) snapshotLayers() []*Layer {
	m.layersMu.RLock()
	defer m.layersMu.RUnlock()
	return append([]*Layer(nil), m.layers...)
}

func (m *Mixer) Pause(p bool)   { m.paused.Store(p) }
func (m *Mixer) IsPaused() bool { return m.paused.Load() }
func (m *Mixer) Freeze(f bool)  { m.frozen.Store(f) }
func (m *Mixer) IsFrozen() bool { return m.frozen.Load() }

// SetGlobalDimmer stores v as is. Range checks belong to the caller.
func (m *Mixer) SetGlobalDimmer(v float64) { m.dimmer.Store(math.Float64bits(v)) }
func (m *Mixer) GlobalDimmer() float64     { return math.Float64frombits(m.dimmer.Load()) }

// SetGlobalSpeed scales every tick's dt.
func (m *Mixer) SetGlobalSpeed(v float64) { m.speed.Store(math.Float64bits(v)) }
func (m *Mixer) GlobalSpeed() float64     { return math.Float64frombits(m.speed.Load()) }

// Do queues fn to run on the render goroutine at the start of the next tick.
// A full queue drops fn and reports false.
func (m *Mixer) Do(fn func(*Mixer)) bool {
	select {
	case m.cmds <- fn:
		return true
	default:
		log.Warn().Int("queue", cap(m.cmds)).Msg("mixer command queue full; dropping")
		return false
	}
}

// drain runs only what was queued when the tick began; commands queued
// meanwhile wait for the next tick.
func (m *Mixer) drain() {
	for n := len(m.cmds); n > 0; n-- {
		(<-m.cmds)(m)
	}
}

// OnsetDetected raises the onset flag unless the previous accepted onset is
// younger than the holdoff. It reports whether this onset was accepted.
func (m *Mixer) OnsetDetected() bool {
	m.onsetMu.Lock()
	defer m.onsetMu.Unlock()
	now := m.now()
	if !m.lastOnset.IsZero() && now.Sub(m.lastOnset).Seconds() < m.cfg.OnsetHoldoff {
		return false
	}
	m.lastOnset = now
	m.onset = true
	m.onsetSeq++
	return true
}

// FeatureReceived validates f, caches it per emitter group and forwards it to
// every layer on the next tick. A truthy "onset" or "beat" also raises the
// onset flag.
func (m *Mixer) FeatureReceived(f audio.Feature) error {
	if err := m.emitters.Update(f); err != nil {
		log.Error().Err(err).Str("group", f.Group).Str("feature", f.Feature).Msg("dropping feature")
		return err
	}
	if (f.Feature == "onset" || f.Feature == "beat") && f.Truthy() {
		m.OnsetDetected()
	}
	m.Do(func(m *Mixer) {
		for _, l := range m.snapshotLayers() {
			l.FeatureReceived(f)
		}
	})
	return nil
}

// IsOnset is the edge-triggered onset read for presets. It returns the onset
// flag as latched at the start of the tick; a true read clears the flag at the
// end of the tick unless a newer onset arrived in between.
func (m *Mixer) IsOnset() bool {
	if m.frameOnset {
		m.onsetRead = true
		return true
	}
	return false
}

func (m *Mixer) latchOnset() {
	m.onsetMu.Lock()
	m.frameOnset = m.onset
	m.frameSeq = m.onsetSeq
	m.onsetMu.Unlock()
	m.onsetRead = false
}

func (m *Mixer) releaseOnset() {
	if !m.onsetRead {
		return
	}
	m.onsetMu.Lock()
	if m.onsetSeq == m.frameSeq {
		m.onset = false
	}
	m.onsetMu.Unlock()
	m.onsetRead = false
}

// OnsetPending reports the raw onset flag. Safe from any goroutine.
func (m *Mixer) OnsetPending() bool {
	m.onsetMu.Lock()
	defer m.onsetMu.Unlock()
	return m.onset
}

func (m *Mixer) tickPaused() bool   { return m.framePaused }
func (m *Mixer) onsetPending() bool { return m.frameOnset }

// Tick renders one frame. It belongs to the loop goroutine; call it directly
// only when the loop is not running.
func (m *Mixer) Tick() error {
	m.drain()

	m.statsMu.Lock()
	m.stats.Frames++
	m.statsMu.Unlock()

	now := m.now()
	dt := 0.0
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now
	if m.frozen.Load() {
		return nil
	}
	dt *= m.GlobalSpeed()

	m.framePaused = m.paused.Load()
	m.latchOnset()

	layers := m.snapshotLayers()
	var out render.Buffer
	if len(layers) == 1 {
		buf, err := layers[0].Draw(dt)
		if err != nil {
			return err
		}
		out = buf
	} else {
		m.master.Clear()
		for _, l := range layers {
			buf, err := l.Draw(dt)
			if err != nil {
				return err
			}
			render.Composite(m.master, buf, l.blend, render.LayerMix)
		}
		out = m.master
	}

	if m.rendering() {
		out.Normalize(m.GlobalDimmer())
		if m.out != nil {
			if err := m.out.WriteBuffer(out); err != nil {
				log.Debug().Err(err).Msg("write frame")
			}
		}
	} else if m.out != nil && len(layers) > 0 && !layers[0].empty() {
		if err := m.out.WriteCommands(layers[0].playlist.Active().Commands()); err != nil {
			log.Debug().Err(err).Msg("write commands")
		}
	}

	m.releaseOnset()

	if m.cfg.Diagnostic {
		m.record(now)
	}
	m.publish(layers)
	return nil
}

func (m *Mixer) publish(layers []*Layer) {
	status := make([]LayerStatus, len(layers))
	for i, l := range layers {
		status[i] = l.status()
	}
	m.statsMu.Lock()
	m.stats.Layers = status
	m.statsMu.Unlock()

	if m.telemetry == nil || m.emitters.Len() == 0 {
		return
	}
	m.telemetry.PublishTargets(m.emitters.Retarget())
}

// PresetByName implements preset.Host.
func (m *Mixer) PresetByName(layer, name string) (preset.Preset, bool) {
	l, err := m.Layer(layer)
	if err != nil || l.empty() {
		return nil, false
	}
	return l.playlist.PresetByName(name)
}

// TransitionByName implements preset.Host.
func (m *Mixer) TransitionByName(layer, mode string) (transition.Strategy, error) {
	l, err := m.Layer(layer)
	if err != nil {
		return nil, err
	}
	return l.TransitionByName(mode)
}

// FeatureValue implements preset.Host.
func (m *Mixer) FeatureValue(group, feature string) (float64, bool) {
	return m.emitters.Value(group, feature)
}

// EmitterPosition implements preset.Host.
func (m *Mixer) EmitterPosition(group string) (render.Vec3, bool) {
	return m.emitters.Position(group)
}

var _ preset.Host = (*Mixer)(nil)
