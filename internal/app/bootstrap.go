// Package app wires configuration, layout, presets, the mixer and the outputs
// into one runnable core.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-arcaluminis/internal/config"
	"github.com/coreman2200/funtimes-arcaluminis/internal/control"
	diag "github.com/coreman2200/funtimes-arcaluminis/internal/diagnostics"
	"github.com/coreman2200/funtimes-arcaluminis/internal/driver/fake"
	"github.com/coreman2200/funtimes-arcaluminis/internal/layout"
	"github.com/coreman2200/funtimes-arcaluminis/internal/led"
	"github.com/coreman2200/funtimes-arcaluminis/internal/mixer"
	"github.com/coreman2200/funtimes-arcaluminis/internal/playlist"
	"github.com/coreman2200/funtimes-arcaluminis/internal/preset"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/post"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render/scenes"
	"github.com/coreman2200/funtimes-arcaluminis/internal/ws"
)

type Core struct {
	Cfg    *config.Config
	Layout *layout.Layout
	Mixer  *mixer.Mixer
	Sink   *led.Sink
	Server *ws.Server
	// DriverName is the output actually in use after any fallback.
	DriverName string

	saveMu sync.Mutex
}

// Options adjust a run without touching the config file.
type Options struct {
	// ConfigPath is where control changes are persisted; "" disables saving.
	ConfigPath string
	// Headless runs without a scene: presets tick and frames go out as commands.
	Headless bool
	// Preset pins the default layer to one preset and pauses.
	Preset string
	// Driver overrides the configured output.
	Driver led.Driver
	// Diagnostic checks every buffer for NaN/Inf and stops on the first one.
	Diagnostic bool
}

// OpenDriver opens the configured output. Hardware failures fall back to the
// simulator with a warning.
func OpenDriver(cfg *config.Config, count int) (led.Driver, string) {
	var (
		drv led.Driver
		err error
	)
	switch cfg.Driver {
	case "sim", "":
		return &fake.Driver{}, "sim"
	case "spi":
		drv, err = led.OpenSPI(cfg.SPI.Dev, count, cfg.ColorOrder, cfg.SPI.SpeedHz, cfg.SPI.ResetUs)
	case "nrz":
		var nrz *led.NRZ
		nrz, err = led.OpenNRZ(cfg.SPI.Dev, count, physic.Frequency(cfg.SPI.SpeedHz)*physic.Hertz)
		if err == nil {
			drv = nrz
		}
	case "serial":
		drv, err = led.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
	default:
		err = fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Driver).Msg("driver init failed; falling back to SIM")
		return &fake.Driver{}, "sim"
	}
	return drv, cfg.Driver
}

// InitCore builds everything but starts nothing.
func InitCore(cfg *config.Config, opts Options) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := layout.New(
		layout.Dim{X: cfg.Dim.X, Y: cfg.Dim.Y, Z: cfg.Dim.Z},
		layout.Serpentine{XFlipEveryRow: cfg.XFlipEveryRow, YFlipEveryPanel: cfg.YFlipEveryPanel},
		cfg.PitchMM, cfg.PanelGapMM,
	)
	var scene render.Scene = l
	if opts.Headless {
		scene = nil
	}

	drv, name := opts.Driver, "custom"
	if drv == nil {
		drv, name = OpenDriver(cfg, l.Count())
	}
	pipe := post.New(render.Power{
		WhiteCap: cfg.Power.WhiteCap * 3,
		ChanmA:   cfg.Power.ChanmA,
		BudgetmA: cfg.Power.LimitAmps * 1000,
		Knee:     cfg.Power.Knee,
	}, l.WireOrder())
	sink := led.NewSink(pipe, l.Count(), drv)

	mx := mixer.New(mixer.Config{
		TickRate:     cfg.Mixer.TickRate,
		OnsetHoldoff: cfg.Mixer.OnsetHoldoff,
		Dimmer:       cfg.Brightness,
		Speed:        cfg.Mixer.Speed,
		Paused:       cfg.Mixer.Paused,
		Diagnostic:   opts.Diagnostic || cfg.Mixer.Profile,
	}, scene, sink)

	reg := scenes.NewRegistry()
	ctx := preset.Context{Scene: scene, Host: mx}
	for _, lc := range cfg.Layers {
		pl, err := playlist.Build(lc.Program, reg, ctx)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", lc.Name, err)
		}
		blend, err := render.ParseBlendMode(lc.Blend)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", lc.Name, err)
		}
		layer, err := mixer.NewLayer(lc.Name, pl, mixer.LayerConfig{
			PresetDuration:     lc.PresetDuration,
			TransitionDuration: lc.TransitionDuration,
			TransitionSlop:     lc.TransitionSlop,
			TransitionMode:     lc.Transition,
			Blend:              blend,
			Env:                mx.TransitionEnv(),
		})
		if err != nil {
			return nil, err
		}
		if err := mx.AddLayer(layer); err != nil {
			return nil, err
		}
		log.Info().Str("layer", lc.Name).Strs("presets", pl.Names()).Msg("layer ready")
	}
	if opts.Preset != "" {
		if err := mx.SetConstantPreset(opts.Preset); err != nil {
			return nil, err
		}
	}

	srv := ws.NewServer(mx, l)
	srv.Driver = name
	sink.Tee(srv)
	mx.SetTelemetry(srv)

	c := &Core{Cfg: cfg, Layout: l, Mixer: mx, Sink: sink, Server: srv, DriverName: name}
	srv.OnControl = func(ev control.Event) { c.persist(opts.ConfigPath, ev) }
	return c, nil
}

// persist saves settings that should survive a restart.
func (c *Core) persist(path string, ev control.Event) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	switch ev.Kind {
	case control.Pause, control.Resume:
		c.Cfg.Mixer.Paused = ev.Kind == control.Pause
	case control.SetDimmer:
		c.Cfg.Brightness = ev.Value
	default:
		return
	}
	if path == "" {
		return
	}
	if err := config.Save(path, c.Cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config save failed")
	}
}

// Run starts the mixer and blocks until ctx is done or the loop dies.
func (c *Core) Run(ctx context.Context) error {
	c.Mixer.Start()
	defer c.Sink.Close()
	select {
	case <-ctx.Done():
		c.Mixer.Stop()
		return nil
	case <-c.Mixer.Done():
		err := c.Mixer.Err()
		if err != nil {
			c.Server.PushDiag(diag.Fatal("RENDER.STOPPED", err))
		}
		return err
	}
}
