package mixer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

func TestLaterLayerWins(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 5})
	r.layer("black", LayerConfig{}, newStub("black", render.Black))
	r.layer("white", LayerConfig{}, newStub("white", render.White))

	r.step(0.1)
	want := render.NewBuffer(5)
	want.Fill(render.White)
	assert.Equal(t, want, r.out.last())
}

func TestLayerBlendAdd(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 2})
	r.layer("base", LayerConfig{}, newStub("red", red))
	top := r.layer("glow", LayerConfig{Blend: render.BlendAdd}, newStub("blue", blue))
	assert.Equal(t, render.BlendAdd, top.Blend())

	r.step(0.1)
	for _, c := range r.out.last() {
		assert.Equal(t, 0.0, c.H, "dimmer layer keeps the base hue")
		assert.InDelta(t, 0.75, c.L, 1e-12)
	}
}

func TestEmitterPosition(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	_, ok := r.m.EmitterPosition("deck")
	assert.False(t, ok)
	for _, f := range []audio.Feature{featureOf("deck", "pos_x", 1), featureOf("deck", "pos_y", 2), featureOf("deck", "pos_z", 3)} {
		require.NoError(t, r.m.FeatureReceived(f))
	}
	pos, ok := r.m.EmitterPosition("deck")
	require.True(t, ok)
	assert.Equal(t, render.Vec3{X: 1, Y: 2, Z: 3}, pos)
}

func TestAddLayerRejectsDuplicateName(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	r.layer("main", LayerConfig{}, newStub("A", red))
	l, err := NewLayer("main", nil, LayerConfig{})
	require.NoError(t, err)
	assert.ErrorIs(t, r.m.AddLayer(l), ErrDuplicateLayer)

	assert.Equal(t, "main", r.m.DefaultLayer().Name())
	_, ok := r.m.LayerByName("nope")
	assert.False(t, ok)
	_, err = r.m.Layer("nope")
	assert.ErrorIs(t, err, ErrNoLayer)
	got, err := r.m.Layer("")
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name())
}

func TestTickNormalizesOutput(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 3})
	r.layer("main", LayerConfig{}, newStub("wild", render.Color{H: -2.3, L: 7, S: -4}))

	r.step(0.1)
	for _, c := range r.out.last() {
		assert.True(t, inRange(c), "%+v", c)
	}
}

func TestDimmerAndSpeed(t *testing.T) {
	r := newRig(t, Config{Dimmer: 0.5, Speed: 2}, lineScene{n: 2})
	a := newStub("A", render.Color{H: 0.1, L: 0.8, S: 1})
	l := r.layer("main", LayerConfig{PresetDuration: 100}, a, newStub("B", blue))

	r.step(1)
	assert.InDelta(t, 0.4, r.out.last()[0].L, 1e-9)
	assert.InDelta(t, 2.0, l.Elapsed(), 1e-9)
	assert.InDelta(t, 2.0, a.dt, 1e-9)

	r.m.SetGlobalDimmer(1)
	r.m.SetGlobalSpeed(1)
	r.step(1)
	assert.InDelta(t, 0.8, r.out.last()[0].L, 1e-9)
	assert.InDelta(t, 3.0, l.Elapsed(), 1e-9)
}

func TestZeroConfigDefaults(t *testing.T) {
	m := New(Config{}, nil, nil)
	assert.Equal(t, 1.0, m.GlobalDimmer())
	assert.Equal(t, 1.0, m.GlobalSpeed())
	assert.Equal(t, time.Second/60, m.cfg.period())
}

func TestFreezeReemitsNothingNew(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 2})
	a := newStub("A", red)
	l := r.layer("main", LayerConfig{PresetDuration: 100}, a)

	r.step(1)
	r.m.Freeze(true)
	assert.True(t, r.m.IsFrozen())
	r.step(1)
	r.step(1)
	assert.Equal(t, 1, a.ticks)
	assert.Len(t, r.out.frames, 1)
	assert.Equal(t, 1.0, l.Elapsed())
	assert.Equal(t, uint64(3), r.m.Stats().Frames)

	r.m.Freeze(false)
	r.step(1)
	assert.Equal(t, 2, a.ticks)
	assert.InDelta(t, 2.0, l.Elapsed(), 1e-9, "dt spans one tick, not the frozen ones")
}

func TestHeadlessSendsCommands(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.layer("main", LayerConfig{}, newStub("A", red))

	r.step(0.1)
	assert.Empty(t, r.out.frames)
	require.Len(t, r.out.commands, 1)
	assert.Equal(t, []render.Command{{Pixel: -1, Color: red}}, r.out.commands[0])
}

func TestOnsetDebounce(t *testing.T) {
	r := newRig(t, Config{OnsetHoldoff: 0.5}, lineScene{n: 1})

	assert.True(t, r.m.OnsetDetected())
	r.clk.Advance(0.2)
	assert.False(t, r.m.OnsetDetected(), "inside holdoff")
	r.clk.Advance(0.4)
	assert.True(t, r.m.OnsetDetected(), "0.6s after the accepted onset")
}

func TestIsOnsetOncePerTick(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	var reads [][]bool
	a := newStub("A", red)
	a.onTick = func() { reads = append(reads, []bool{r.m.IsOnset(), r.m.IsOnset()}) }
	r.layer("main", LayerConfig{PresetDuration: 100}, a)

	r.m.OnsetDetected()
	r.step(0.1)
	r.step(0.1)
	require.Len(t, reads, 2)
	assert.Equal(t, []bool{true, true}, reads[0])
	assert.Equal(t, []bool{false, false}, reads[1])
	assert.False(t, r.m.OnsetPending())
}

func TestOnsetSurvivesTickWhenNotRead(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	r.layer("main", LayerConfig{PresetDuration: 100}, newStub("A", red))

	r.m.OnsetDetected()
	r.step(0.1)
	assert.True(t, r.m.OnsetPending())
}

func TestOnsetDuringTickIsKept(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	a := newStub("A", red)
	fired := false
	a.onTick = func() {
		r.m.IsOnset()
		if !fired {
			fired = true
			r.clk.Advance(0.01)
			r.m.OnsetDetected()
		}
	}
	r.layer("main", LayerConfig{PresetDuration: 100}, a)

	r.m.OnsetDetected()
	r.step(0.1)
	assert.True(t, r.m.OnsetPending(), "an onset accepted mid-tick is not consumed by that tick")
	r.step(0.1)
	assert.False(t, r.m.OnsetPending())
}

func TestFeatureReceived(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	a := newStub("A", red)
	r.layer("main", LayerConfig{PresetDuration: 100}, a)

	assert.ErrorIs(t, r.m.FeatureReceived(audio.Feature{Feature: "beat"}), audio.ErrMissingGroup)
	assert.Zero(t, r.m.Emitters().Len())

	require.NoError(t, r.m.FeatureReceived(featureOf("[Channel1]", "vumeter", 0.7)))
	assert.False(t, r.m.OnsetPending())
	v, ok := r.m.FeatureValue("[Channel1]", "vumeter")
	require.True(t, ok)
	assert.Equal(t, 0.7, v)
	assert.Empty(t, a.feature, "layers see features on the next tick")

	require.NoError(t, r.m.FeatureReceived(audio.Feature{Group: "[Channel1]", Feature: "beat", IsBool: true, Bool: true, Value: 1}))
	assert.True(t, r.m.OnsetPending())

	r.step(0.1)
	assert.Len(t, a.feature, 2)
}

func TestDoRunsAtNextTick(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	l := r.layer("main", LayerConfig{PresetDuration: 100}, newStub("A", red), newStub("B", blue))

	r.m.Do(func(m *Mixer) { m.DefaultLayer().Next() })
	assert.Equal(t, Idle, l.State())
	r.step(0.1)
	assert.Equal(t, "B", l.ActiveName())
}

func TestDoQueuedDuringDrainWaitsForNextTick(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 1})
	r.layer("main", LayerConfig{PresetDuration: 100}, newStub("A", red))

	runs := 0
	var again func(*Mixer)
	again = func(m *Mixer) {
		runs++
		m.Do(again)
	}
	r.m.Do(again)

	r.step(0.1)
	assert.Equal(t, 1, runs, "a command that keeps requeueing must not hold the tick")
	r.step(0.1)
	assert.Equal(t, 2, runs)
	assert.Equal(t, uint64(2), r.m.Stats().Frames)
}

func TestDoDropsWhenFull(t *testing.T) {
	m := New(Config{QueueSize: 1}, nil, nil)
	assert.True(t, m.Do(func(*Mixer) {}))
	assert.False(t, m.Do(func(*Mixer) {}))
}

func TestDiagnosticHistogram(t *testing.T) {
	r := newRig(t, Config{Diagnostic: true}, lineScene{n: 1})
	r.layer("main", LayerConfig{}, newStub("A", red))
	for i := 0; i < 4; i++ {
		r.step(0.02)
	}
	s := r.m.Stats()
	assert.Equal(t, 4, s.Histogram[50])
	require.Len(t, s.Layers, 1)
	assert.Equal(t, "A", s.Layers[0].Active)
	assert.Equal(t, "idle", s.Layers[0].State)
}

type targets struct{ got [][]audio.Target }

func (t *targets) PublishTargets(ts []audio.Target) { t.got = append(t.got, ts) }

func TestTelemetryPublishesTargets(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 3})
	tel := &targets{}
	r.m.SetTelemetry(tel)
	r.layer("main", LayerConfig{}, newStub("A", red))

	r.step(0.1)
	assert.Empty(t, tel.got, "nothing to publish without emitters")

	require.NoError(t, r.m.FeatureReceived(featureOf("g", "vumeter", 1)))
	r.step(0.1)
	require.Len(t, tel.got, 1)
	require.Len(t, tel.got[0], 1)
	assert.Equal(t, "g", tel.got[0][0].Group)
	assert.Equal(t, render.Vec3{X: 1}, tel.got[0][0].Position)
}

func TestStartStop(t *testing.T) {
	m := New(Config{TickRate: 500}, lineScene{n: 4}, &capture{})
	l, err := NewLayer("main", nil, LayerConfig{})
	require.NoError(t, err)
	require.NoError(t, m.AddLayer(l))

	m.Start()
	m.Start()
	assert.True(t, m.Running())
	require.Eventually(t, func() bool { return m.Stats().Frames > 2 }, 2*time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
	assert.False(t, m.Running())
	select {
	case <-m.Done():
	default:
		t.Fatal("loop still running after Stop")
	}
	assert.NoError(t, m.Err())
	st := m.Stats()
	assert.False(t, st.Stopped.IsZero())
	assert.Greater(t, st.Rate, 0.0)
}

func TestLoopStopsOnNonFinite(t *testing.T) {
	m := New(Config{TickRate: 500, Diagnostic: true}, lineScene{n: 2}, &capture{})
	bad, err := NewLayer("bad", playlistOf(newStub("nan", render.Color{H: nan()})), LayerConfig{})
	require.NoError(t, err)
	require.NoError(t, m.AddLayer(bad))

	m.Start()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.ErrorIs(t, m.Err(), render.ErrNonFinite)
	assert.False(t, m.Running())
}

func TestSetConstantPreset(t *testing.T) {
	r := newRig(t, Config{}, lineScene{n: 2})
	assert.ErrorIs(t, r.m.SetConstantPreset("blue"), ErrNoLayer)

	red := newStub("red", render.Color{H: 0, L: 0.5, S: 1})
	blue := newStub("blue", render.Color{H: 0.66, L: 0.5, S: 1})
	l := r.layer("main", LayerConfig{PresetDuration: 1}, red, blue)

	assert.ErrorIs(t, r.m.SetConstantPreset("green"), ErrUnknownPreset)
	require.NoError(t, r.m.SetConstantPreset("blue"))
	assert.True(t, r.m.IsPaused())
	assert.Equal(t, 1, l.Playlist().Len())
	assert.Equal(t, "blue", l.ActiveName())

	r.step(5)
	assert.Equal(t, Idle, l.State())
	assert.InDelta(t, 0.66, r.out.last()[0].H, 1e-9)
}
