package mixer

import (
	"math"
	"time"
)

// LayerStatus is a per-tick snapshot of one layer for diagnostics.
type LayerStatus struct {
	Name           string  `json:"name"`
	Active         string  `json:"active"`
	State          string  `json:"state"`
	Mode           string  `json:"mode"`
	Progress       float64 `json:"progress"`
	Elapsed        float64 `json:"elapsed"`
	PresetDuration float64 `json:"preset_duration"`
}

// Stats is what the diagnostics endpoint reports.
type Stats struct {
	Frames  uint64    `json:"frames"`
	Started time.Time `json:"started"`
	Stopped time.Time `json:"stopped,omitempty"`
	// Rate is frames per second since Started, up to Stopped if set.
	Rate float64 `json:"rate"`
	// Histogram counts ticks by instantaneous frame rate (whole fps). Only
	// filled in diagnostic mode.
	Histogram map[int]int   `json:"histogram"`
	Layers    []LayerStatus `json:"layers"`
	Paused    bool          `json:"paused"`
	Frozen    bool          `json:"frozen"`
	Dimmer    float64       `json:"dimmer"`
	Speed     float64       `json:"speed"`
	Emitters  int           `json:"emitters"`
}

func (l *Layer) status() LayerStatus {
	return LayerStatus{
		Name:           l.name,
		Active:         l.ActiveName(),
		State:          l.state.String(),
		Mode:           l.mode,
		Progress:       l.progress,
		Elapsed:        l.elapsed,
		PresetDuration: l.presetDuration,
	}
}

func (m *Mixer) record(now time.Time) {
	frame := now.Sub(m.lastFrame).Seconds()
	m.lastFrame = now
	if frame <= 0 {
		return
	}
	fps := int(math.Round(1 / frame))
	m.statsMu.Lock()
	m.stats.Histogram[fps]++
	m.statsMu.Unlock()
}

// Stats returns a copy of the current counters. Safe from any goroutine.
func (m *Mixer) Stats() Stats {
	m.statsMu.Lock()
	s := m.stats
	s.Histogram = make(map[int]int, len(m.stats.Histogram))
	for k, v := range m.stats.Histogram {
		s.Histogram[k] = v
	}
	s.Layers = append([]LayerStatus(nil), m.stats.Layers...)
	m.statsMu.Unlock()

	s.Paused = m.IsPaused()
	s.Frozen = m.IsFrozen()
	s.Dimmer = m.GlobalDimmer()
	s.Speed = m.GlobalSpeed()
	s.Emitters = m.emitters.Len()
	if !s.Started.IsZero() {
		end := s.Stopped
		if end.IsZero() {
			end = time.Now()
		}
		if d := end.Sub(s.Started).Seconds(); d > 0 {
			s.Rate = float64(s.Frames) / d
		}
	}
	return s
}
