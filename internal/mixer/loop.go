package mixer

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

// Start launches the tick loop. It is a no-op while already running.
func (m *Mixer) Start() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.running {
		return
	}
	period := m.cfg.period()

	for _, l := range m.snapshotLayers() {
		l.Reset()
	}
	m.master = render.NewBuffer(m.pixels())
	now := m.now()
	m.lastTick = now
	m.lastFrame = now

	m.statsMu.Lock()
	m.stats.Started = now
	m.stats.Stopped = time.Time{}
	m.statsMu.Unlock()

	m.err = nil
	m.running = true
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(period, m.stopCh, m.done)
	log.Info().Dur("period", period).Int("pixels", m.pixels()).Msg("mixer started")
}

// run sleeps max(0, period-cost) between ticks. Overruns are absorbed, never queued.
func (m *Mixer) run(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(period)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		began := time.Now()
		if err := m.Tick(); err != nil {
			m.fail(err)
			return
		}
		delay := period - time.Since(began)
		if delay < 0 {
			delay = 0
		}
		timer.Reset(delay)
	}
}

func (m *Mixer) fail(err error) {
	log.Error().Err(err).Msg("render loop stopped")
	m.runMu.Lock()
	m.err = err
	m.running = false
	m.runMu.Unlock()
	m.markStopped()
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (m *Mixer) Stop() {
	m.runMu.Lock()
	if !m.running {
		m.runMu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.done
	m.runMu.Unlock()

	<-done
	m.markStopped()
	log.Info().Msg("mixer stopped")
}

func (m *Mixer) markStopped() {
	m.statsMu.Lock()
	m.stats.Stopped = m.now()
	m.statsMu.Unlock()
}

func (m *Mixer) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.running
}

// Done is closed when the current loop exits, by Stop or by a fatal tick
// error. It is nil before the first Start.
func (m *Mixer) Done() <-chan struct{} {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.done
}

// Err is the error that stopped the loop, if any.
func (m *Mixer) Err() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.err
}
