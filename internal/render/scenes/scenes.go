// Package scenes collects the built-in presets.
package scenes

import (
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/beat"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/calib"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/combine"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/grad"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/ocean"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/solid"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/spiral"
)

// Register adds every built-in preset kind to reg.
func Register(reg *preset.Registry) {
	reg.Register(solid.Kind, solid.Factory)
	reg.Register(grad.Kind, grad.Factory)
	reg.Register(spiral.Kind, spiral.Factory)
	reg.Register(beat.Kind, beat.Factory)
	reg.Register(combine.Kind, combine.Factory)
	reg.Register(ocean.Kind, ocean.Factory)
	reg.Register(calib.Kind, calib.Factory)
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *preset.Registry {
	reg := preset.NewRegistry()
	Register(reg)
	return reg
}
