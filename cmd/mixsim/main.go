// mixsim runs a config headlessly for a fixed time on the log driver and
// prints the mixer stats, handy for trying playlists without hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/app"
	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/config"
	"github.com/coreman2200/funtimes-arcaluminis/internal/driver/fake"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (default: built-in demo)")
		seconds    = flag.Float64("seconds", 10, "how long to run")
		bpm        = flag.Float64("bpm", 120, "synthetic onset tempo; 0 disables")
		every      = flag.Int("log-every", 60, "log one frame summary every N frames")
		presetName = flag.String("preset", "", "play one preset and pause")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config")
		}
		cfg = c
	}
	drv := &fake.Driver{Every: *every}
	core, err := app.InitCore(cfg, app.Options{Driver: drv, Preset: *presetName, Diagnostic: true})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*seconds*float64(time.Second)))
	defer cancel()
	if *bpm > 0 {
		go beats(ctx, core, *bpm)
	}
	if err := core.Run(ctx); err != nil {
		log.Error().Err(err).Msg("render loop stopped")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(core.Mixer.Stats())
}

// beats feeds a steady onset and amplitude stream, as an audio analyser would.
func beats(ctx context.Context, core *app.Core, bpm float64) {
	t := time.NewTicker(time.Duration(float64(time.Minute) / bpm))
	defer t.Stop()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			for _, f := range []audio.Feature{
				{Group: "sim", Feature: "onset", Bool: true, IsBool: true, Value: 1, TimeReceived: now},
				{Group: "sim", Feature: "rms", Value: 0.5 + 0.5*float64(n%4)/3, TimeReceived: now},
			} {
				if err := core.Mixer.FeatureReceived(f); err != nil {
					log.Warn().Err(err).Msg("feature")
				}
			}
		}
	}
}
