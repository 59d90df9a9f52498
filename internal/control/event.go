// Package control turns operator input (websocket JSON, MIDI) into mixer
// mutations that run on the render goroutine.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	Pause                 Kind = "pause"
	Resume                Kind = "resume"
	Freeze                Kind = "freeze"
	Unfreeze              Kind = "unfreeze"
	SetDimmer             Kind = "set_dimmer"
	SetSpeed              Kind = "set_speed"
	NextPreset            Kind = "next_preset"
	PrevPreset            Kind = "prev_preset"
	StartTransition       Kind = "start_transition"
	CancelTransition      Kind = "cancel_transition"
	SetPresetDuration     Kind = "set_preset_duration"
	SetTransitionDuration Kind = "set_transition_duration"
	SetTransitionSlop     Kind = "set_transition_slop"
	SetTransitionMode     Kind = "set_transition_mode"
	SetConstantPreset     Kind = "set_constant_preset"
	Onset                 Kind = "onset"
)

var known = map[Kind]bool{
	Pause: true, Resume: true, Freeze: true, Unfreeze: true,
	SetDimmer: true, SetSpeed: true,
	NextPreset: true, PrevPreset: true, StartTransition: true, CancelTransition: true,
	SetPresetDuration: true, SetTransitionDuration: true, SetTransitionSlop: true,
	SetTransitionMode: true, SetConstantPreset: true,
	Onset: true,
}

// layerScoped kinds address one layer through Event.Layer.
func (k Kind) layerScoped() bool {
	switch k {
	case NextPreset, PrevPreset, StartTransition, CancelTransition,
		SetPresetDuration, SetTransitionDuration, SetTransitionSlop, SetTransitionMode:
		return true
	}
	return false
}

var (
	ErrUnknownEvent = errors.New("unknown control event")
	ErrOutOfRange   = errors.New("control value out of range")
	ErrQueueFull    = errors.New("mixer command queue full")
)

// Event is one operator command. Layer "" addresses the default layer. Name
// carries the preset or transition name where the kind needs one.
type Event struct {
	Kind  Kind    `json:"kind" yaml:"kind"`
	Layer string  `json:"layer,omitempty" yaml:"layer,omitempty"`
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Name  string  `json:"name,omitempty" yaml:"name,omitempty"`
}

// Validate checks the kind and the value range for kinds that carry one.
func (e Event) Validate() error {
	if !known[e.Kind] {
		return fmt.Errorf("%q: %w", e.Kind, ErrUnknownEvent)
	}
	switch e.Kind {
	case SetDimmer:
		if e.Value < 0 || e.Value > 1 {
			return fmt.Errorf("dimmer %v: %w", e.Value, ErrOutOfRange)
		}
	case SetSpeed, SetPresetDuration, SetTransitionDuration, SetTransitionSlop:
		if e.Value < 0 {
			return fmt.Errorf("%s %v: %w", e.Kind, e.Value, ErrOutOfRange)
		}
	case SetConstantPreset:
		if e.Name == "" {
			return fmt.Errorf("%s needs a preset name: %w", e.Kind, ErrOutOfRange)
		}
	}
	return nil
}

// Decode parses and validates a JSON event.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode control event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
