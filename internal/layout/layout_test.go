package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

func TestWireOrderIsPermutation(t *testing.T) {
	l := New(Dim{X: 3, Y: 4, Z: 2}, Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}, 10, 5)
	order := l.WireOrder()
	require.Len(t, order, 24)
	seen := map[int]bool{}
	for _, px := range order {
		assert.False(t, seen[px], "pixel %d fed twice", px)
		seen[px] = true
	}
	assert.Len(t, seen, 24)
}

func TestSerpentineRowFlip(t *testing.T) {
	l := New(Dim{X: 3, Y: 2, Z: 1}, Serpentine{XFlipEveryRow: true}, 1, 0)
	// second row runs right to left on the wire
	assert.Equal(t, 3, l.Index(2, 1, 0))
	assert.Equal(t, 5, l.Index(0, 1, 0))
	assert.Equal(t, []int{0, 1, 2, 5, 4, 3}, l.WireOrder())
}

func TestGeometry(t *testing.T) {
	l := New(Dim{X: 2, Y: 2, Z: 2}, Serpentine{}, 10, 5)
	lo, hi := l.Extents()
	assert.Equal(t, render.Vec3{}, lo)
	assert.Equal(t, render.Vec3{X: 10, Y: 10, Z: 15}, hi)
	assert.Equal(t, render.Vec3{X: 5, Y: 5, Z: 7.5}, l.Centroid())
	x, y, z := l.Coords(7)
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{x, y, z})
	assert.Equal(t, render.Vec3{}, l.Position(99))
}
