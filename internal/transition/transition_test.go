package transition

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

func frames(n int) (render.Buffer, render.Buffer) {
	a := render.NewBuffer(n)
	b := render.NewBuffer(n)
	for i := 0; i < n; i++ {
		a[i] = render.Color{H: 0.1, L: 0.3 + 0.01*float64(i), S: 0.9}
		b[i] = render.Color{H: 0.8, L: 0.6, S: 0.2}
	}
	return a, b
}

func TestExactEndpoints(t *testing.T) {
	env := Env{Rand: rand.New(rand.NewSource(1))}
	for _, name := range []string{"Fade", "Smooth Fade", "Additive Blend", "Wipe", "Dissolve"} {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, env)
			require.NoError(t, err)
			s.Reset()
			a, b := frames(16)

			got := s.Blend(a, b, 0)
			assert.Equal(t, a, got, "progress 0 must reproduce a")
			got = s.Blend(a, b, 1)
			assert.Equal(t, b, got, "progress 1 must reproduce b")
		})
	}
}

func TestMaskRecombinesChannels(t *testing.T) {
	s, err := New("Mask Blend", Env{})
	require.NoError(t, err)
	a, b := frames(4)
	got := s.Blend(a, b, 0.3)
	for i := range got {
		assert.Equal(t, a[i].L, got[i].L)
		assert.Equal(t, b[i].H, got[i].H)
		assert.Equal(t, b[i].S, got[i].S)
	}
}

func TestBlendStaysInsideInputs(t *testing.T) {
	a, _ := frames(8)
	_, b := frames(5)
	for _, name := range Names() {
		s, err := New(name, Env{Rand: rand.New(rand.NewSource(2))})
		require.NoError(t, err)
		s.Reset()
		assert.Len(t, s.Blend(a, b, 0.5), 5, name)
	}
}

func TestFadeMidpoint(t *testing.T) {
	s, _ := New("Fade", Env{})
	a, b := frames(1)
	got := s.Blend(a, b, 0.5)
	assert.InDelta(t, (a[0].L+b[0].L)/2, got[0].L, 1e-9)
}

func TestDissolveMonotonic(t *testing.T) {
	s, _ := New("Dissolve", Env{Rand: rand.New(rand.NewSource(3))})
	s.Reset()
	a, b := frames(64)
	prev := 0
	for _, p := range []float64{0.1, 0.3, 0.6, 0.9} {
		got := s.Blend(a, b, p)
		switched := 0
		for i := range got {
			if got[i] == b[i] {
				switched++
			}
		}
		assert.GreaterOrEqual(t, switched, prev)
		prev = switched
	}
}

func TestUnknownName(t *testing.T) {
	_, err := New("Sparkle", Env{})
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRotationCoversAllBeforeRepeat(t *testing.T) {
	r := NewRotation(Env{Rand: rand.New(rand.NewSource(4))})
	seen := map[string]bool{}
	for i := 0; i < len(Names()); i++ {
		s := r.Next()
		require.NotNil(t, s)
		assert.False(t, seen[s.Name()], "repeat before exhaustion: %s", s.Name())
		seen[s.Name()] = true
	}
	assert.Equal(t, 0, r.Remaining())
	require.NotNil(t, r.Next())
	assert.Equal(t, len(Names())-1, r.Remaining())
}

func TestEaseEndpoints(t *testing.T) {
	for _, k := range []string{"linear", "smooth", "cubic", "bogus"} {
		assert.Equal(t, 0.0, Ease(k, 0), k)
		assert.Equal(t, 1.0, Ease(k, 1), k)
		assert.Equal(t, 1.0, Ease(k, 2), k)
	}
	assert.Equal(t, 0.5, Ease("smooth", 0.5))
}
