package ocean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/layout"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/scenestest"
)

func TestHeightfieldStaysBounded(t *testing.T) {
	host := scenestest.NewHost()
	scene := layout.New(layout.Dim{X: 8, Y: 8, Z: 8}, layout.Serpentine{}, 10, 0)
	p, err := Factory("sea", preset.Context{Scene: scene, Host: host, Params: map[string]float64{"grid": 8}})
	require.NoError(t, err)
	o := p.(*Ocean)

	for i := 0; i < 500; i++ {
		host.Onset = i%10 == 0
		o.Tick(1.0 / 60)
	}
	for _, h := range o.H {
		assert.LessOrEqual(t, h, o.hMax+1e-9)
		assert.GreaterOrEqual(t, h, -o.hMax-1e-9)
	}

	out := o.Draw(render.NewBuffer(scene.PixelCount()))
	require.NoError(t, out.CheckFinite())
}

func TestWaterBelowSky(t *testing.T) {
	scene := layout.New(layout.Dim{X: 2, Y: 10, Z: 2}, layout.Serpentine{}, 10, 0)
	p, err := Factory("sea", preset.Context{Scene: scene, Params: map[string]float64{"tide_amp": 0, "wave_amp": 0}})
	require.NoError(t, err)
	out := p.Draw(render.NewBuffer(scene.PixelCount()))

	o := p.(*Ocean)
	bottom, top := out[0], out[len(out)-1]
	assert.InDelta(t, o.skyHue, top.H, 1e-9)
	assert.NotEqual(t, o.skyHue, bottom.H)
}
