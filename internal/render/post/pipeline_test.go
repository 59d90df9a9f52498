package post

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

func TestApplyIdentityOrder(t *testing.T) {
	p := New(render.Power{}, nil)
	out := p.Apply(render.Buffer{render.White, render.Black})
	assert.Equal(t, []byte{255, 255, 255, 0, 0, 0}, out)
}

func TestApplyHonoursBudget(t *testing.T) {
	// two white pixels draw 120mA unlimited
	p := New(render.Power{BudgetmA: 60}, nil)
	out := p.Apply(render.Buffer{render.White, render.White})
	for _, b := range out {
		assert.InDelta(t, 128, int(b), 1)
	}
}

func TestApplyCommandsFillThenOverride(t *testing.T) {
	p := New(render.Power{}, nil)
	out := p.ApplyCommands([]render.Command{
		{Pixel: -1, Color: render.White},
		{Pixel: 1, Color: render.Black},
		{Pixel: 9, Color: render.Black},
	}, 3)
	assert.Equal(t, []byte{255, 255, 255, 0, 0, 0, 255, 255, 255}, out)
}
