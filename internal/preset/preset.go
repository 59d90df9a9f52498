// Package preset defines the capability set every visual effect implements and
// the registry that builds them by kind.
package preset

import (
	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

// Preset is a pluggable visual effect. All methods run on the render goroutine.
type Preset interface {
	Name() string
	// Tick advances internal state by dt seconds.
	Tick(dt float64)
	// Draw renders into dst and returns the buffer holding the frame (usually dst).
	Draw(dst render.Buffer) render.Buffer
	// CanTransition reports whether the preset may be cut away from right now.
	CanTransition() bool
	OnFeature(f audio.Feature)
	// Reset restores the preset to its initial state before it is shown again.
	Reset()
	// ClearCommands drops the command list recorded during the previous frame.
	ClearCommands()
	Commands() []render.Command
}

// Host is the mixer as seen by presets.
type Host interface {
	// IsOnset is the edge-triggered onset read; see mixer.Mixer.IsOnset.
	IsOnset() bool
	FeatureValue(group, feature string) (float64, bool)
	// EmitterPosition is the (pos_x, pos_y, pos_z) last reported by group.
	EmitterPosition(group string) (render.Vec3, bool)
	// PresetByName looks up a preset in another layer's playlist.
	PresetByName(layer, name string) (Preset, bool)
	TransitionByName(layer, mode string) (transition.Strategy, error)
}

// Context is handed to preset factories.
type Context struct {
	Scene render.Scene
	Host  Host
	// Params are the numeric knobs from the playlist entry.
	Params map[string]float64
	// Strings are the textual knobs (preset names, transition modes).
	Strings map[string]string
}

// Param reads a numeric knob with default.
func (c Context) Param(key string, def float64) float64 {
	if c.Params == nil {
		return def
	}
	if v, ok := c.Params[key]; ok {
		return v
	}
	return def
}

func (c Context) String(key, def string) string {
	if v, ok := c.Strings[key]; ok {
		return v
	}
	return def
}

// Pixels is the scene size, or 0 when running headless.
func (c Context) Pixels() int {
	if c.Scene == nil {
		return 0
	}
	return c.Scene.PixelCount()
}

// Color reads an HLS knob stored as prefix.h, prefix.l and prefix.s.
func (c Context) Color(prefix string, def render.Color) render.Color {
	return render.Color{
		H: c.Param(prefix+".h", def.H),
		L: c.Param(prefix+".l", def.L),
		S: c.Param(prefix+".s", def.S),
	}
}
