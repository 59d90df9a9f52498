package preset

import (
	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

// Base supplies the boring half of Preset. Embed it and override what you need.
type Base struct {
	name     string
	commands []render.Command
}

func NewBase(name string) Base { return Base{name: name} }

func (b *Base) Name() string               { return b.name }
func (b *Base) CanTransition() bool        { return true }
func (b *Base) OnFeature(audio.Feature)    {}
func (b *Base) Reset()                     {}
func (b *Base) ClearCommands()             { b.commands = b.commands[:0] }
func (b *Base) Commands() []render.Command { return b.commands }

// SetAll records an all-pixel command.
func (b *Base) SetAll(c render.Color) {
	b.commands = append(b.commands, render.Command{Pixel: -1, Color: c})
}

// SetPixel records a single-pixel command.
func (b *Base) SetPixel(i int, c render.Color) {
	b.commands = append(b.commands, render.Command{Pixel: i, Color: c})
}
