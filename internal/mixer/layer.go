package mixer

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

// Transition mode names with special meaning.
const (
	ModeCut    = "Cut"
	ModeRandom = "Random"
)

// Playlist is the preset cursor a layer drives. *playlist.Playlist satisfies it.
type Playlist interface {
	Len() int
	Active() preset.Preset
	ActiveIndex() int
	Next() preset.Preset
	NextIndex() int
	Advance()
	SetNextByName(name string) bool
	PresetByIndex(i int) preset.Preset
	PresetByName(name string) (preset.Preset, bool)
	RelativeToActive(offset int) string
}

// LayerConfig seeds a layer's timing and transition mode.
type LayerConfig struct {
	PresetDuration     float64
	TransitionDuration float64
	TransitionSlop     float64
	TransitionMode     string
	// Blend is how the layer composites over the ones before it.
	Blend render.BlendMode
	Env   transition.Env
}

// host is the mixer state a layer reads during Draw.
type host interface {
	tickPaused() bool
	onsetPending() bool
}

// Layer owns a playlist and its transition state machine. Apart from the
// constructor, every method must run on the render goroutine (use Mixer.Do
// from anywhere else).
type Layer struct {
	name     string
	playlist Playlist
	host     host
	env      transition.Env
	blend    render.BlendMode

	mode     string
	strategy transition.Strategy
	rotation *transition.Rotation

	state    TransitionState
	progress float64
	elapsed  float64

	presetDuration     float64
	transitionDuration float64
	transitionSlop     float64

	pixels      int
	primary     render.Buffer
	secondary   render.Buffer
	checkFinite bool
}

// NewLayer builds a layer. An unresolvable transition mode is a configuration
// error. Buffers are sized when the layer joins a mixer.
func NewLayer(name string, pl Playlist, cfg LayerConfig) (*Layer, error) {
	l := &Layer{
		name:     name,
		playlist: pl,
		env:      cfg.Env,
		blend:    cfg.Blend,
	}
	for _, set := range []struct {
		fn func(float64) error
		v  float64
	}{
		{l.SetPresetDuration, cfg.PresetDuration},
		{l.SetTransitionDuration, cfg.TransitionDuration},
		{l.SetTransitionSlop, cfg.TransitionSlop},
	} {
		if err := set.fn(set.v); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
	}
	if err := l.SetTransitionMode(cfg.TransitionMode); err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	return l, nil
}

func (l *Layer) Name() string                { return l.name }
func (l *Layer) Playlist() Playlist          { return l.playlist }
func (l *Layer) State() TransitionState      { return l.state }
func (l *Layer) Progress() float64           { return l.progress }
func (l *Layer) Elapsed() float64            { return l.elapsed }
func (l *Layer) PresetDuration() float64     { return l.presetDuration }
func (l *Layer) TransitionSlop() float64     { return l.transitionSlop }
func (l *Layer) TransitionMode() string      { return l.mode }
func (l *Layer) TransitionDuration() float64 { return l.transitionDuration }

// Blend is the layer's composite mode.
func (l *Layer) Blend() render.BlendMode { return l.blend }

// Strategy is the blend in use, nil for a cut.
func (l *Layer) Strategy() transition.Strategy { return l.strategy }

// ActiveName is the active preset's name, or "" for an empty playlist.
func (l *Layer) ActiveName() string {
	if l.playlist == nil || l.playlist.Len() == 0 {
		return ""
	}
	return l.playlist.Active().Name()
}

// Resize sets the pixel count and reallocates both scratch buffers.
func (l *Layer) Resize(n int) {
	l.pixels = n
	l.Reset()
}

// Reset replaces both scratch buffers with fresh zeroed ones.
func (l *Layer) Reset() {
	l.primary = render.NewBuffer(l.pixels)
	l.secondary = render.NewBuffer(l.pixels)
}

func (l *Layer) empty() bool { return l.playlist == nil || l.playlist.Len() == 0 }

// Next requests a transition to the following preset.
func (l *Layer) Next() {
	if l.empty() {
		return
	}
	l.StartTransition(l.playlist.RelativeToActive(1))
}

// Prev requests a transition to the preceding preset.
func (l *Layer) Prev() {
	if l.empty() {
		return
	}
	l.StartTransition(l.playlist.RelativeToActive(-1))
}

// StartTransition arms a transition, optionally to a named target. It does
// nothing for playlists of one preset or fewer.
func (l *Layer) StartTransition(target string) {
	if l.playlist == nil || l.playlist.Len() <= 1 {
		return
	}
	if target != "" && !l.playlist.SetNextByName(target) {
		log.Warn().Str("layer", l.name).Str("target", target).Msg("transition target not in playlist; keeping next")
	}
	l.state = Starting
	l.elapsed = 0
}

// SetPlaylist swaps the preset cursor and drops any transition in flight.
func (l *Layer) SetPlaylist(pl Playlist) {
	l.playlist = pl
	l.state = Idle
	l.progress = 0
	l.elapsed = 0
}

// CancelTransition drops any pending or running transition without advancing.
func (l *Layer) CancelTransition() {
	l.state = Idle
	l.progress = 0
}

// CheckTransitionMode reports whether name resolves to Cut, Random or a
// registered strategy. It touches no layer state.
func CheckTransitionMode(name string) error {
	switch name {
	case "", ModeCut, ModeRandom:
		return nil
	}
	if !transition.Known(name) {
		return fmt.Errorf("%q: %w", name, transition.ErrUnknown)
	}
	return nil
}

// TransitionByName resolves a mode to a strategy. Cut and "" resolve to nil.
func (l *Layer) TransitionByName(name string) (transition.Strategy, error) {
	switch name {
	case "", ModeCut:
		return nil, nil
	case ModeRandom:
		if l.rotation == nil {
			l.rotation = transition.NewRotation(l.env)
		}
		return l.rotation.Next(), nil
	}
	s, err := transition.New(name, l.env)
	if err != nil {
		log.Error().Err(err).Str("layer", l.name).Msg("resolve transition")
		return nil, err
	}
	return s, nil
}

// SetTransitionMode selects the blend strategy. It is refused while a
// transition is pending or running.
func (l *Layer) SetTransitionMode(name string) error {
	if l.state != Idle {
		log.Warn().Str("layer", l.name).Str("mode", name).Msg("transition in progress; mode unchanged")
		return ErrTransitionInProgress
	}
	s, err := l.TransitionByName(name)
	if err != nil {
		return err
	}
	if name == "" {
		name = ModeCut
	}
	l.mode = name
	l.strategy = s
	return nil
}

func (l *Layer) setDuration(dst *float64, what string, d float64) error {
	if d < 0 {
		log.Warn().Str("layer", l.name).Float64(what, d).Msg("rejected negative duration")
		return fmt.Errorf("%s %v: %w", what, d, ErrNegativeDuration)
	}
	*dst = d
	return nil
}

func (l *Layer) SetPresetDuration(d float64) error {
	return l.setDuration(&l.presetDuration, "preset_duration", d)
}

func (l *Layer) SetTransitionDuration(d float64) error {
	return l.setDuration(&l.transitionDuration, "transition_duration", d)
}

func (l *Layer) SetTransitionSlop(d float64) error {
	return l.setDuration(&l.transitionSlop, "transition_slop", d)
}

// FeatureReceived forwards a feature to the active preset.
func (l *Layer) FeatureReceived(f audio.Feature) {
	if l.empty() {
		return
	}
	if p := l.playlist.Active(); p != nil {
		p.OnFeature(f)
	}
}

func (l *Layer) paused() bool {
	return l.host != nil && l.host.tickPaused()
}

func (l *Layer) onset() bool {
	return l.host != nil && l.host.onsetPending()
}

// Draw advances the layer by dt seconds and renders one frame. The returned
// buffer is owned by the layer or its strategy and is valid until the next Draw.
func (l *Layer) Draw(dt float64) (render.Buffer, error) {
	if l.empty() {
		l.primary.Clear()
		return l.primary, nil
	}
	paused := l.paused()
	if !paused {
		l.elapsed += dt
	}

	pl := l.playlist
	active, activeIdx := pl.Active(), pl.ActiveIndex()
	next, nextIdx := pl.Next(), pl.NextIndex()

	active.ClearCommands()
	active.Tick(dt)

	if l.state != Idle {
		if l.state == Starting {
			// elapsed was zeroed by StartTransition, so this frame's dt counts
			l.state = Transitioning
			l.progress = 0
			if l.mode == ModeRandom && l.rotation != nil {
				l.strategy = l.rotation.Next()
			}
			if l.strategy != nil {
				l.strategy.Reset()
			}
			next.Reset()
			l.secondary.Clear()
		}
		if l.transitionDuration > 0 && l.strategy != nil {
			if !paused {
				l.progress = l.elapsed / l.transitionDuration
			}
		} else {
			l.progress = 1
		}

		next.ClearCommands()
		next.Tick(dt)

		if l.progress >= 1 {
			l.state = Idle
			l.elapsed = 0
			pl.Advance()
			active, activeIdx = next, nextIdx
		}
	}

	out, err := l.render(pl.PresetByIndex(activeIdx), pl.PresetByIndex(nextIdx))
	if err != nil {
		return out, err
	}

	if !paused && l.state == Idle && active.CanTransition() && l.elapsed >= l.presetDuration {
		if l.elapsed >= l.presetDuration+l.transitionSlop || l.onset() {
			l.StartTransition("")
			l.elapsed = 0
		}
	}
	return out, nil
}

func (l *Layer) render(active, next preset.Preset) (render.Buffer, error) {
	out := active.Draw(l.primary)
	if err := l.check(active.Name(), out); err != nil {
		return out, err
	}
	if l.state == Idle {
		return out, nil
	}
	sec := next.Draw(l.secondary)
	if err := l.check(next.Name(), sec); err != nil {
		return out, err
	}
	if l.strategy == nil {
		return out, nil
	}
	out = l.strategy.Blend(out, sec, l.progress)
	if err := l.check(l.strategy.Name(), out); err != nil {
		return out, err
	}
	return out, nil
}

func (l *Layer) check(who string, buf render.Buffer) error {
	if !l.checkFinite {
		return nil
	}
	if err := buf.CheckFinite(); err != nil {
		return fmt.Errorf("layer %q %s: %w", l.name, who, err)
	}
	return nil
}
