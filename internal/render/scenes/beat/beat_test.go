package beat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/layout"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/scenestest"
)

func beatOf(group string, on bool) audio.Feature {
	return audio.Feature{Group: group, Feature: "beat", IsBool: true, Bool: on}
}

func TestBeatNeedsPosition(t *testing.T) {
	host := scenestest.NewHost()
	p, err := Factory("b", preset.Context{Host: host})
	require.NoError(t, err)
	c := p.(*Circles)

	c.OnFeature(beatOf("g", true))
	assert.Equal(t, 0, c.Rings())

	host.Set("g", "pos_x", 0)
	host.Set("g", "pos_y", 0)
	host.Set("g", "pos_z", 0)
	c.OnFeature(beatOf("g", false))
	assert.Equal(t, 0, c.Rings())
	c.OnFeature(beatOf("g", true))
	assert.Equal(t, 1, c.Rings())
}

func TestRingExpandsAndDies(t *testing.T) {
	host := scenestest.NewHost()
	scene := layout.New(layout.Dim{X: 10, Y: 1, Z: 1}, layout.Serpentine{}, 10, 0)
	p, err := Factory("b", preset.Context{Scene: scene, Host: host, Params: map[string]float64{"speed": 10, "width": 5}})
	require.NoError(t, err)
	c := p.(*Circles)
	host.Set("g", "pos_x", 0)
	host.Set("g", "pos_y", 0)
	host.Set("g", "pos_z", 0)
	c.OnFeature(beatOf("g", true))

	c.Tick(3) // radius 30
	out := c.Draw(render.NewBuffer(scene.PixelCount()))
	assert.Equal(t, 0.0, out[0].L)
	assert.Equal(t, 0.5, out[3].L)
	assert.Equal(t, 0.0, out[6].L)

	c.Tick(200)
	assert.Equal(t, 0, c.Rings())
}
