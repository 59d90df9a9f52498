package led

import (
	"sync/atomic"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/post"
)

// Sink turns mixer frames into packed RGB for a driver. It satisfies mixer.Output.
type Sink struct {
	pipe   *post.Pipeline
	pixels int
	drv    Driver
	frames atomic.Uint64
}

// NewSink renders pixels-long frames through pipe into drv.
func NewSink(pipe *post.Pipeline, pixels int, drv Driver) *Sink {
	return &Sink{pipe: pipe, pixels: pixels, drv: drv}
}

func (s *Sink) WriteBuffer(buf render.Buffer) error {
	s.frames.Add(1)
	return s.drv.Write(s.pipe.Apply(buf))
}

// WriteCommands expands a headless command list to a full frame.
func (s *Sink) WriteCommands(cmds []render.Command) error {
	s.frames.Add(1)
	return s.drv.Write(s.pipe.ApplyCommands(cmds, s.pixels))
}

// Tee adds d as a second destination. Call it before frames flow.
func (s *Sink) Tee(d Driver) { s.drv = Multi{s.drv, d} }

// Frames is how many frames have been handed to the driver.
func (s *Sink) Frames() uint64 { return s.frames.Load() }

func (s *Sink) Close() error { return s.drv.Close() }
