package audio

import (
	"sort"
	"sync"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

// Emitter is a source of sound in the scene, identified by its group. It caches the
// latest report of every feature (beat, onset, vumeter, silence, bpm, pitch, pos_x...).
type Emitter struct {
	group    string
	features map[string]Feature
	target   render.Vec3
}

// Position is the reported (pos_x, pos_y, pos_z), if all three are known.
func (e *Emitter) Position() (render.Vec3, bool) {
	x, okx := e.features["pos_x"]
	y, oky := e.features["pos_y"]
	z, okz := e.features["pos_z"]
	if !okx || !oky || !okz {
		return render.Vec3{}, false
	}
	return render.Vec3{X: x.Value, Y: y.Value, Z: z.Value}, true
}

// Registry holds one Emitter per group. It is written from the sensor goroutine and
// read from the render goroutine, so every access goes through the lock.
type Registry struct {
	mu       sync.RWMutex
	emitters map[string]*Emitter
	centroid render.Vec3
}

// NewRegistry returns a registry whose new emitters target centroid.
func NewRegistry(centroid render.Vec3) *Registry {
	return &Registry{emitters: map[string]*Emitter{}, centroid: centroid}
}

// Update stores f on its group's emitter, creating the emitter on first sight.
func (r *Registry) Update(f Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.getLocked(f.Group)
	e.features[f.Feature] = f
	return nil
}

func (r *Registry) getLocked(group string) *Emitter {
	e, ok := r.emitters[group]
	if !ok {
		e = &Emitter{group: group, features: map[string]Feature{}, target: r.centroid}
		r.emitters[group] = e
	}
	return e
}

// Value returns the latest value of a group's feature.
func (r *Registry) Value(group, feature string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.emitters[group]
	if !ok {
		return 0, false
	}
	f, ok := e.features[feature]
	return f.Value, ok
}

// Position is the reported position of a group's emitter.
func (r *Registry) Position(group string) (render.Vec3, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.emitters[group]
	if !ok {
		return render.Vec3{}, false
	}
	return e.Position()
}

// Retarget moves each emitter's target to its reported position when one is known,
// and returns a snapshot of every target sorted by group.
func (r *Registry) Retarget() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Target, 0, len(r.emitters))
	for g, e := range r.emitters {
		if p, ok := e.Position(); ok {
			e.target = p
		}
		out = append(out, Target{Group: g, Position: e.target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.emitters)
}

type Target struct {
	Group    string
	Position render.Vec3
}
