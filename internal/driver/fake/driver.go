package fake

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Driver logs a compact summary of each frame (first pixel & avg) and keeps
// the last one, useful for headless runs and tests.
type Driver struct {
	// Every logs one frame in Every; zero logs nothing.
	Every int

	mu     sync.Mutex
	count  int
	last   []byte
	closed bool
}

func (d *Driver) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	d.last = append(d.last[:0], rgb...)
	if d.Every <= 0 || d.count%d.Every != 0 || len(rgb) < 3 {
		return nil
	}
	// compute simple average for log
	var r, g, b int
	for i := 0; i+2 < len(rgb); i += 3 {
		r += int(rgb[i])
		g += int(rgb[i+1])
		b += int(rgb[i+2])
	}
	n := len(rgb) / 3
	log.Debug().
		Int("frame", d.count).
		Ints("avg", []int{r / n, g / n, b / n}).
		Ints("first", []int{int(rgb[0]), int(rgb[1]), int(rgb[2])}).
		Msg("fake frame")
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Count is the number of frames written.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Last returns a copy of the most recent frame.
func (d *Driver) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.last...)
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
