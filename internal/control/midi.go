package control

import (
	"github.com/rs/zerolog/log"
	"gitlab.com/gomidi/midi/v2"
)

// CC binds a controller number to a continuous event. The 0-127 controller
// value is scaled onto [Min, Max].
type CC struct {
	Kind  Kind    `yaml:"kind"`
	Layer string  `yaml:"layer,omitempty"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Mapping binds MIDI input to control events. Notes fire on note-on only.
type Mapping struct {
	Notes map[uint8]Event `yaml:"notes"`
	CC    map[uint8]CC    `yaml:"cc"`
}

// DefaultMapping suits a generic pad controller: the bottom pad row drives
// navigation and the first two knobs drive dimmer and speed.
func DefaultMapping() Mapping {
	return Mapping{
		Notes: map[uint8]Event{
			36: {Kind: PrevPreset},
			37: {Kind: NextPreset},
			38: {Kind: CancelTransition},
			39: {Kind: Onset},
			40: {Kind: Pause},
			41: {Kind: Resume},
			42: {Kind: Freeze},
			43: {Kind: Unfreeze},
		},
		CC: map[uint8]CC{
			21: {Kind: SetDimmer, Min: 0, Max: 1},
			22: {Kind: SetSpeed, Min: 0, Max: 4},
			23: {Kind: SetTransitionDuration, Min: 0, Max: 10},
		},
	}
}

// Translate maps one MIDI message to an event.
func (mp Mapping) Translate(msg midi.Message) (Event, bool) {
	var ch, key, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		ev, ok := mp.Notes[key]
		return ev, ok
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		b, ok := mp.CC[cc]
		if !ok {
			return Event{}, false
		}
		v := b.Min + (b.Max-b.Min)*float64(val)/127
		return Event{Kind: b.Kind, Layer: b.Layer, Value: v}, true
	}
	return Event{}, false
}

// Handler returns a MIDI receive callback that hands mapped events to apply.
func (mp Mapping) Handler(apply func(Event) error) func(midi.Message) {
	return func(msg midi.Message) {
		ev, ok := mp.Translate(msg)
		if !ok {
			return
		}
		if err := apply(ev); err != nil {
			log.Warn().Err(err).Str("event", string(ev.Kind)).Msg("midi event dropped")
		}
	}
}
