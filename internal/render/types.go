package render

type Vec3 struct{ X, Y, Z float64 }

// Scene is the fixture geometry the mixer renders for.
type Scene interface {
	PixelCount() int
	Position(i int) Vec3
	Centroid() Vec3
	// Extents returns the min and max corners of the pixel positions.
	Extents() (Vec3, Vec3)
}

// Command is a fixture-level instruction recorded by a preset. Pixel < 0 targets every pixel.
// Commands are only sent to the output in headless mode, when no scene is bound.
type Command struct {
	Pixel int
	Color Color
}
