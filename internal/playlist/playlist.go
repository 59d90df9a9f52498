// Package playlist is the in-memory preset cursor a layer plays through.
package playlist

import (
	"errors"

	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
)

var ErrEmpty = errors.New("program has no entries")

// Playlist holds built presets, the active index and the pending next index.
// It is owned by one layer and only touched from the render goroutine.
type Playlist struct {
	presets []preset.Preset
	active  int
	next    int
}

func New(presets ...preset.Preset) *Playlist {
	p := &Playlist{presets: presets}
	p.next = p.wrap(1)
	return p
}

// Build instantiates every entry of prog through reg.
func Build(prog Program, reg *preset.Registry, ctx preset.Context) (*Playlist, error) {
	if len(prog.Entries) == 0 {
		return nil, ErrEmpty
	}
	out := make([]preset.Preset, 0, len(prog.Entries))
	for _, e := range prog.Entries {
		c := ctx
		c.Params = e.Params
		c.Strings = e.Strings
		name := e.Name
		if name == "" {
			name = e.Kind
		}
		p, err := reg.Build(e.Kind, name, c)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return New(out...), nil
}

func (p *Playlist) Len() int { return len(p.presets) }

func (p *Playlist) wrap(i int) int {
	n := len(p.presets)
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (p *Playlist) Active() preset.Preset { return p.PresetByIndex(p.active) }
func (p *Playlist) ActiveIndex() int      { return p.active }
func (p *Playlist) Next() preset.Preset   { return p.PresetByIndex(p.next) }
func (p *Playlist) NextIndex() int        { return p.next }

// Advance makes the pending next preset active and queues the one after it.
func (p *Playlist) Advance() {
	if len(p.presets) == 0 {
		return
	}
	p.active = p.next
	p.next = p.wrap(p.active + 1)
}

// SetNextByName makes name the pending next preset.
func (p *Playlist) SetNextByName(name string) bool {
	for i, pr := range p.presets {
		if pr.Name() == name {
			p.next = i
			return true
		}
	}
	return false
}

func (p *Playlist) PresetByIndex(i int) preset.Preset {
	if i < 0 || i >= len(p.presets) {
		return nil
	}
	return p.presets[i]
}

func (p *Playlist) PresetByName(name string) (preset.Preset, bool) {
	for _, pr := range p.presets {
		if pr.Name() == name {
			return pr, true
		}
	}
	return nil, false
}

// RelativeToActive returns the name of the preset offset slots from the active one.
func (p *Playlist) RelativeToActive(offset int) string {
	if len(p.presets) == 0 {
		return ""
	}
	return p.presets[p.wrap(p.active+offset)].Name()
}

// Names lists presets in play order.
func (p *Playlist) Names() []string {
	out := make([]string, len(p.presets))
	for i, pr := range p.presets {
		out[i] = pr.Name()
	}
	return out
}
