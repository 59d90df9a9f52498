// Package layout describes the physical cube: how many pixels, where they sit
// and in which order the strip is wired.
package layout

import "github.com/coreman2200/funtimes-arcaluminis/internal/render"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool `yaml:"y_flip_every_panel"`
}

// Layout is a cube of Dim.Z panels, each Dim.X by Dim.Y pixels. Buffer index i
// is the raster index z*X*Y + y*X + x; the wire order is given by Index.
type Layout struct {
	Dim        Dim
	Order      Serpentine
	PanelGapMM float64
	PitchMM    float64

	pos      []render.Vec3
	min, max render.Vec3
	centroid render.Vec3
}

// New bakes world positions in millimetres. A zero pitch falls back to 1mm so
// the cube still has extent.
func New(dim Dim, order Serpentine, pitchMM, gapMM float64) *Layout {
	l := &Layout{Dim: dim, Order: order, PitchMM: pitchMM, PanelGapMM: gapMM}
	if l.PitchMM <= 0 {
		l.PitchMM = 1
	}
	l.bake()
	return l
}

func (l *Layout) bake() {
	n := l.Count()
	l.pos = make([]render.Vec3, n)
	if n == 0 {
		return
	}
	var sum render.Vec3
	i := 0
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				p := render.Vec3{
					X: float64(x) * l.PitchMM,
					Y: float64(y) * l.PitchMM,
					Z: float64(z) * (l.PitchMM + l.PanelGapMM),
				}
				l.pos[i] = p
				sum.X, sum.Y, sum.Z = sum.X+p.X, sum.Y+p.Y, sum.Z+p.Z
				i++
			}
		}
	}
	l.min = l.pos[0]
	l.max = l.pos[n-1]
	f := float64(n)
	l.centroid = render.Vec3{X: sum.X / f, Y: sum.Y / f, Z: sum.Z / f}
}

// Index maps x,y,z -> linear LED index on the wire (0..N-1)
func (l *Layout) Index(x, y, z int) int {
	yy := y
	xx := x
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Dim.Y - 1 - y
	}
	if (yy%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l *Layout) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}

// WireOrder returns, for every wire slot, the buffer pixel that feeds it.
func (l *Layout) WireOrder() []int {
	out := make([]int, l.Count())
	i := 0
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				out[l.Index(x, y, z)] = i
				i++
			}
		}
	}
	return out
}

// Coords is the inverse of the raster index.
func (l *Layout) Coords(i int) (x, y, z int) {
	perPanel := l.Dim.X * l.Dim.Y
	z = i / perPanel
	rem := i % perPanel
	return rem % l.Dim.X, rem / l.Dim.X, z
}

func (l *Layout) PixelCount() int { return len(l.pos) }

func (l *Layout) Position(i int) render.Vec3 {
	if i < 0 || i >= len(l.pos) {
		return render.Vec3{}
	}
	return l.pos[i]
}

func (l *Layout) Centroid() render.Vec3               { return l.centroid }
func (l *Layout) Extents() (render.Vec3, render.Vec3) { return l.min, l.max }

var _ render.Scene = (*Layout)(nil)
