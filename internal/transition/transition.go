// Package transition blends two preset frames by a progress fraction.
package transition

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

// ErrUnknown is returned when a strategy name is not registered.
var ErrUnknown = errors.New("transition not loaded")

// Strategy blends buffer a into buffer b. progress 0 is all a and 1 is all b.
// Blend may return an internal scratch buffer; it never reads or writes past len(a).
type Strategy interface {
	Name() string
	// Reset is called at the start of every transition episode.
	Reset()
	Blend(a, b render.Buffer, progress float64) render.Buffer
}

// Env is what a strategy may need from the outside world.
type Env struct {
	Scene render.Scene
	Rand  *rand.Rand
}

type Factory func(env Env) Strategy

var registry = map[string]Factory{}

// Register adds a strategy under name. It is meant for init-time use only.
func Register(name string, f Factory) {
	registry[name] = f
}

// Names lists registered strategies in stable order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name is registered.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// New builds a registered strategy by exact name.
func New(name string, env Env) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknown)
	}
	return f(env), nil
}

// scratch returns buf resized to n without reallocating when possible.
func scratch(buf render.Buffer, n int) render.Buffer {
	if cap(buf) >= n {
		return buf[:n]
	}
	return render.NewBuffer(n)
}

func pixels(a, b render.Buffer) int {
	if len(b) < len(a) {
		return len(b)
	}
	return len(a)
}
