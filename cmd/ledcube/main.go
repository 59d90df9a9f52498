package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/app"
	"github.com/coreman2200/funtimes-arcaluminis/internal/config"
	"github.com/coreman2200/funtimes-arcaluminis/internal/control"
	"github.com/coreman2200/funtimes-arcaluminis/internal/control/midiin"
	"github.com/coreman2200/funtimes-arcaluminis/internal/led"
)

func main() {
	// ---- Flags (remain usable; config.yaml overrides what it sets) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "", "driver: spi | nrz | serial | sim (overrides config)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		presetName = flag.String("preset", "", "play one preset of the default layer and pause")
		headless   = flag.Bool("headless", false, "run without a scene; presets emit commands")
		diagnostic = flag.Bool("diagnostic", false, "check every frame for NaN/Inf and stop on the first")
		profile    = flag.Bool("profile", false, "record the tick-rate histogram")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		listSerial = flag.Bool("list-serial", false, "list serial ports and exit")
		level      = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if *listSerial {
		ports, err := led.Ports()
		if err != nil {
			log.Fatal().Err(err).Msg("list serial ports")
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
		cfg = config.Default()
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *profile {
		cfg.Mixer.Profile = true
	}

	core, err := app.InitCore(cfg, app.Options{
		ConfigPath: *configPath,
		Headless:   *headless,
		Preset:     *presetName,
		Diagnostic: *diagnostic,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- MIDI (optional) ----
	if cfg.MIDI.Enabled {
		handle := cfg.MIDI.Mapping.Handler(func(ev control.Event) error { return control.Apply(core.Mixer, ev) })
		w, err := midiin.New(cfg.MIDI.Device, handle)
		if err != nil {
			log.Warn().Err(err).Msg("MIDI unavailable")
		} else {
			go w.Run(ctx)
		}
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	core.Server.Routes(mux)
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Listen).Str("driver", core.DriverName).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Run until a signal or a fatal render error ----
	runErr := core.Run(ctx)
	log.Info().Msg("shutting down")
	_ = srv.Close()
	if runErr != nil {
		log.Error().Err(runErr).Msg("render loop stopped")
		os.Exit(1)
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
