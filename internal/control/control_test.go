package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/coreman2200/funtimes-arcaluminis/internal/mixer"
	"github.com/coreman2200/funtimes-arcaluminis/internal/playlist"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes/solid"
	"github.com/coreman2200/funtimes-arcaluminis/internal/transition"
)

type discard struct{}

func (discard) WriteBuffer(render.Buffer) error      { return nil }
func (discard) WriteCommands([]render.Command) error { return nil }

func newMixer(t *testing.T) (*mixer.Mixer, *mixer.Layer) {
	t.Helper()
	m := mixer.New(mixer.Config{}, nil, discard{})
	pl := playlist.New(solid.New("red", solid.Named["red"]), solid.New("blue", solid.Named["blue"]))
	l, err := mixer.NewLayer("main", pl, mixer.LayerConfig{PresetDuration: 10, TransitionDuration: 1, TransitionMode: "Fade"})
	require.NoError(t, err)
	require.NoError(t, m.AddLayer(l))
	return m, l
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"kind":"set_dimmer","value":0.25}`))
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: SetDimmer, Value: 0.25}, ev)

	_, err = Decode([]byte(`{"kind":"explode"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Decode([]byte(`{"kind":"set_dimmer","value":1.5}`))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Decode([]byte(`{"kind":"set_preset_duration","value":-1}`))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Decode([]byte(`{"kind":"set_constant_preset"}`))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestApplyRunsOnNextTick(t *testing.T) {
	m, _ := newMixer(t)
	require.NoError(t, Apply(m, Event{Kind: Pause}))
	require.NoError(t, Apply(m, Event{Kind: SetDimmer, Value: 0.5}))
	assert.False(t, m.IsPaused(), "queued until the tick drains")

	require.NoError(t, m.Tick())
	assert.True(t, m.IsPaused())
	assert.Equal(t, 0.5, m.GlobalDimmer())

	require.NoError(t, Apply(m, Event{Kind: Resume}))
	require.NoError(t, Apply(m, Event{Kind: Freeze}))
	require.NoError(t, m.Tick())
	assert.False(t, m.IsPaused())
	assert.True(t, m.IsFrozen())
}

func TestApplyLayerEvents(t *testing.T) {
	m, l := newMixer(t)

	require.NoError(t, Apply(m, Event{Kind: SetPresetDuration, Value: 3}))
	require.NoError(t, Apply(m, Event{Kind: SetTransitionMode, Layer: "main", Name: "Smooth Fade"}))
	require.NoError(t, Apply(m, Event{Kind: StartTransition, Name: "blue"}))
	require.NoError(t, m.Tick())

	assert.Equal(t, 3.0, l.PresetDuration())
	assert.Equal(t, "Smooth Fade", l.TransitionMode())
	// the first frame after the request starts the blend
	assert.Equal(t, mixer.Transitioning, l.State())

	require.NoError(t, Apply(m, Event{Kind: CancelTransition}))
	require.NoError(t, m.Tick())
	assert.Equal(t, mixer.Idle, l.State())
	assert.Equal(t, "red", l.ActiveName())
}

func TestApplyRejectsBeforeQueuing(t *testing.T) {
	m, l := newMixer(t)
	assert.ErrorIs(t, Apply(m, Event{Kind: SetPresetDuration, Layer: "nope", Value: 3}), mixer.ErrNoLayer)
	assert.ErrorIs(t, Apply(m, Event{Kind: SetTransitionMode, Name: "Spin"}), transition.ErrUnknown)
	require.NoError(t, m.Tick())
	assert.Equal(t, 10.0, l.PresetDuration())
	assert.Equal(t, "Fade", l.TransitionMode())

	require.NoError(t, Apply(m, Event{Kind: SetTransitionMode, Name: mixer.ModeRandom}))
	require.NoError(t, Apply(m, Event{Kind: SetTransitionMode, Name: mixer.ModeCut}))
}

func TestApplyReportsRenderSideFailure(t *testing.T) {
	m, l := newMixer(t)
	var got []error
	report := func(_ Event, err error) { got = append(got, err) }

	require.NoError(t, ApplyReport(m, Event{Kind: StartTransition, Name: "blue"}, report))
	require.NoError(t, m.Tick())
	require.Equal(t, mixer.Transitioning, l.State())

	require.NoError(t, ApplyReport(m, Event{Kind: SetTransitionMode, Name: "Smooth Fade"}, report))
	require.NoError(t, ApplyReport(m, Event{Kind: SetConstantPreset, Name: "green"}, report))
	require.NoError(t, ApplyReport(m, Event{Kind: SetDimmer, Value: 0.5}, report))
	require.NoError(t, m.Tick())

	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0], mixer.ErrTransitionInProgress)
	assert.ErrorIs(t, got[1], mixer.ErrUnknownPreset)
	assert.Equal(t, "Fade", l.TransitionMode())
}

func TestApplyOnsetBypassesQueue(t *testing.T) {
	m, _ := newMixer(t)
	require.NoError(t, Apply(m, Event{Kind: Onset}))
	assert.True(t, m.OnsetPending())
}

func TestApplyConstantPreset(t *testing.T) {
	m, l := newMixer(t)
	require.NoError(t, Apply(m, Event{Kind: SetConstantPreset, Name: "blue"}))
	require.NoError(t, m.Tick())
	assert.True(t, m.IsPaused())
	assert.Equal(t, "blue", l.ActiveName())
	assert.Equal(t, 1, l.Playlist().Len())
}

func TestMappingTranslate(t *testing.T) {
	mp := DefaultMapping()

	ev, ok := mp.Translate(midi.NoteOn(0, 37, 100))
	require.True(t, ok)
	assert.Equal(t, NextPreset, ev.Kind)

	_, ok = mp.Translate(midi.NoteOff(0, 37))
	assert.False(t, ok)

	ev, ok = mp.Translate(midi.ControlChange(0, 21, 127))
	require.True(t, ok)
	assert.Equal(t, SetDimmer, ev.Kind)
	assert.InDelta(t, 1.0, ev.Value, 1e-9)

	ev, ok = mp.Translate(midi.ControlChange(0, 22, 0))
	require.True(t, ok)
	assert.Equal(t, 0.0, ev.Value)

	_, ok = mp.Translate(midi.ControlChange(0, 99, 10))
	assert.False(t, ok)
}

func TestMappingHandler(t *testing.T) {
	var got []Event
	h := DefaultMapping().Handler(func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	h(midi.NoteOn(0, 40, 90))
	h(midi.NoteOn(0, 60, 90))
	require.Len(t, got, 1)
	assert.Equal(t, Pause, got[0].Kind)
}
