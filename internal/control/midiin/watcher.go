// Package midiin connects to a hardware MIDI input and keeps the connection
// alive across hot-plugs.
package midiin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// excluded ports are never auto-connected.
var excluded = []string{"Midi Through", "Through Port", "Dummy"}

const rescanInterval = time.Second

// Watcher monitors MIDI inputs and keeps a listener on the first one whose
// name contains Pattern (or the only input when Pattern is empty).
type Watcher struct {
	Pattern string

	mu       sync.Mutex
	drv      *rtmididrv.Driver
	in       drivers.In
	stop     func()
	selected string
	onMsg    func(midi.Message)
}

func New(pattern string, onMsg func(midi.Message)) (*Watcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Watcher{Pattern: pattern, drv: drv, onMsg: onMsg}, nil
}

// Inputs lists usable input port names.
func (w *Watcher) Inputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		log.Error().Err(err).Msg("midi: list inputs failed")
		return nil
	}
	var names []string
	for _, in := range ins {
		name := in.String()
		if !matchAny(name, excluded) {
			names = append(names, name)
		}
	}
	return names
}

// Run rescans until ctx is done, then closes the driver.
func (w *Watcher) Run(ctx context.Context) {
	t := time.NewTicker(rescanInterval)
	defer t.Stop()
	for {
		w.rescan()
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.closeConn()
			w.drv.Close()
			w.mu.Unlock()
			return
		case <-t.C:
		}
	}
}

func (w *Watcher) rescan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	inputs := w.Inputs()
	if w.selected != "" {
		for _, n := range inputs {
			if n == w.selected {
				return
			}
		}
		log.Warn().Str("device", w.selected).Msg("midi: device disappeared")
		w.closeConn()
	}
	cand, ok := pick(inputs, w.Pattern)
	if !ok {
		return
	}
	if err := w.open(cand); err != nil {
		log.Error().Err(err).Str("device", cand).Msg("midi: connect failed")
	}
}

func pick(inputs []string, pattern string) (string, bool) {
	if pattern != "" {
		for _, name := range inputs {
			if matchAny(name, []string{pattern}) {
				return name, true
			}
		}
		return "", false
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) open(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		w.onMsg(msg)
	}, midi.HandleError(func(err error) {
		log.Warn().Err(err).Str("device", name).Msg("midi: listener error")
		// the listener goroutine must not take the lock itself
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.selected == name {
				w.closeConn()
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}
	w.in, w.stop, w.selected = found, stop, name
	log.Info().Str("device", name).Msg("midi: connected")
	return nil
}

func (w *Watcher) closeConn() {
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
	if w.in != nil {
		_ = w.in.Close()
		w.in = nil
	}
	w.selected = ""
}

func matchAny(s string, pats []string) bool {
	for _, p := range pats {
		if strings.Contains(strings.ToLower(s), strings.ToLower(p)) {
			return true
		}
	}
	return false
}
