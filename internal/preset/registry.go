package preset

import (
	"fmt"
	"sort"
)

// Factory builds a named preset instance.
type Factory func(name string, ctx Context) (Preset, error)

type Registry struct{ m map[string]Factory }

func NewRegistry() *Registry { return &Registry{m: map[string]Factory{}} }

func (r *Registry) Register(kind string, f Factory) {
	if f == nil {
		return
	}
	r.m[kind] = f
}

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build instantiates kind under name.
func (r *Registry) Build(kind, name string, ctx Context) (Preset, error) {
	f, ok := r.m[kind]
	if !ok {
		return nil, fmt.Errorf("preset kind not found: %s", kind)
	}
	p, err := f(name, ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s (%s): %w", name, kind, err)
	}
	return p, nil
}
