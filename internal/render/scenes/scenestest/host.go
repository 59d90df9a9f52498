// Package scenestest has fakes shared by preset tests.
package scenestest

import (
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

// Host is a scriptable preset.Host.
type Host struct {
	Onset    bool
	Features map[string]map[string]float64
	Presets  map[string]preset.Preset
	Env      transition.Env
}

func NewHost() *Host {
	return &Host{Features: map[string]map[string]float64{}, Presets: map[string]preset.Preset{}}
}

func (h *Host) IsOnset() bool { return h.Onset }

func (h *Host) Set(group, feature string, v float64) {
	if h.Features[group] == nil {
		h.Features[group] = map[string]float64{}
	}
	h.Features[group][feature] = v
}

func (h *Host) FeatureValue(group, feature string) (float64, bool) {
	v, ok := h.Features[group][feature]
	return v, ok
}

func (h *Host) EmitterPosition(group string) (render.Vec3, bool) {
	x, okx := h.FeatureValue(group, "pos_x")
	y, oky := h.FeatureValue(group, "pos_y")
	z, okz := h.FeatureValue(group, "pos_z")
	if !okx || !oky || !okz {
		return render.Vec3{}, false
	}
	return render.Vec3{X: x, Y: y, Z: z}, true
}

func (h *Host) PresetByName(_, name string) (preset.Preset, bool) {
	p, ok := h.Presets[name]
	return p, ok
}

func (h *Host) TransitionByName(_, mode string) (transition.Strategy, error) {
	if mode == "" || mode == "Cut" {
		return nil, nil
	}
	return transition.New(mode, h.Env)
}

var _ preset.Host = (*Host)(nil)
