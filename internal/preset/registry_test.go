package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

type flat struct {
	Base
	c render.Color
}

func (f *flat) Tick(float64) {}
func (f *flat) Draw(dst render.Buffer) render.Buffer {
	dst.Fill(f.c)
	f.SetAll(f.c)
	return dst
}

func TestRegistryBuild(t *testing.T) {
	reg := NewRegistry()
	reg.Register("flat", func(name string, ctx Context) (Preset, error) {
		return &flat{Base: NewBase(name), c: render.Color{L: ctx.Param("l", 0.5)}}, nil
	})
	assert.Equal(t, []string{"flat"}, reg.List())

	p, err := reg.Build("flat", "Grey", Context{Params: map[string]float64{"l": 0.25}})
	require.NoError(t, err)
	assert.Equal(t, "Grey", p.Name())
	assert.True(t, p.CanTransition())

	buf := p.Draw(render.NewBuffer(3))
	assert.Equal(t, 0.25, buf[2].L)
	require.Len(t, p.Commands(), 1)
	p.ClearCommands()
	assert.Empty(t, p.Commands())

	_, err = reg.Build("nope", "x", Context{})
	assert.Error(t, err)
}

func TestContextDefaults(t *testing.T) {
	ctx := Context{}
	assert.Equal(t, 2.0, ctx.Param("speed", 2))
	assert.Equal(t, "Fade", ctx.String("mode", "Fade"))
	assert.Equal(t, 0, ctx.Pixels())
}
