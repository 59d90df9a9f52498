package control

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/mixer"
)

// Apply validates ev and queues it on the mixer. Onsets bypass the queue so the
// debounce sees their arrival time.
func Apply(m *mixer.Mixer, ev Event) error {
	return ApplyReport(m, ev, nil)
}

// ApplyReport is Apply with a callback for failures that only show once the
// event runs on the render goroutine, such as a mode change mid-transition.
// report runs on that goroutine and must not block.
func ApplyReport(m *mixer.Mixer, ev Event, report func(Event, error)) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if err := check(m, ev); err != nil {
		return err
	}
	if ev.Kind == Onset {
		m.OnsetDetected()
		return nil
	}
	ok := m.Do(func(m *mixer.Mixer) {
		if err := apply(m, ev); err != nil && report != nil {
			report(ev, err)
		}
	})
	if !ok {
		return ErrQueueFull
	}
	return nil
}

// check rejects what can be known before queuing: the target layer and the
// transition mode name.
func check(m *mixer.Mixer, ev Event) error {
	if !ev.Kind.layerScoped() {
		return nil
	}
	if _, err := m.Layer(ev.Layer); err != nil {
		return err
	}
	if ev.Kind == SetTransitionMode {
		return mixer.CheckTransitionMode(ev.Name)
	}
	return nil
}

func apply(m *mixer.Mixer, ev Event) error {
	lg := log.With().Str("event", string(ev.Kind)).Str("layer", ev.Layer).Logger()
	switch ev.Kind {
	case Pause:
		m.Pause(true)
		return nil
	case Resume:
		m.Pause(false)
		return nil
	case Freeze:
		m.Freeze(true)
		return nil
	case Unfreeze:
		m.Freeze(false)
		return nil
	case SetDimmer:
		m.SetGlobalDimmer(ev.Value)
		return nil
	case SetSpeed:
		m.SetGlobalSpeed(ev.Value)
		return nil
	case SetConstantPreset:
		err := m.SetConstantPreset(ev.Name)
		if err != nil {
			lg.Warn().Err(err).Msg("control event dropped")
		}
		return err
	}

	l, err := m.Layer(ev.Layer)
	if err != nil {
		lg.Warn().Err(err).Msg("control event dropped")
		return err
	}
	switch ev.Kind {
	case NextPreset:
		l.Next()
	case PrevPreset:
		l.Prev()
	case StartTransition:
		l.StartTransition(ev.Name)
	case CancelTransition:
		l.CancelTransition()
	case SetPresetDuration:
		err = l.SetPresetDuration(ev.Value)
	case SetTransitionDuration:
		err = l.SetTransitionDuration(ev.Value)
	case SetTransitionSlop:
		err = l.SetTransitionSlop(ev.Value)
	case SetTransitionMode:
		err = l.SetTransitionMode(ev.Name)
	}
	if err != nil {
		lg.Warn().Err(err).Msg("control event rejected")
		return err
	}
	lg.Debug().Msg("control event applied")
	return nil
}
