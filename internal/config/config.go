// Package config is the on-disk YAML settings for the cube and the mixer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-arcaluminis/internal/control"
	"github.com/coreman2200/funtimes-arcaluminis/internal/playlist"
	"github.com/coreman2200/funtimes-arcaluminis/internal/render"
)

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	WhiteCap  float64 `yaml:"white_cap"`
	ChanmA    float64 `yaml:"chan_ma,omitempty"`
	Knee      float64 `yaml:"knee,omitempty"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs int    `yaml:"reset_us"` // e.g. 300
}

type Serial struct {
	Port string `yaml:"port"` // e.g. /dev/ttyACM0
	Baud int    `yaml:"baud"`
}

type MIDI struct {
	Enabled bool            `yaml:"enabled"`
	Device  string          `yaml:"device,omitempty"` // substring of the input port name
	Mapping control.Mapping `yaml:"mapping"`
}

// Mixer holds the scheduler knobs.
type Mixer struct {
	TickRate     float64 `yaml:"tick_rate"`
	OnsetHoldoff float64 `yaml:"onset_holdoff"`
	Paused       bool    `yaml:"paused"`
	Profile      bool    `yaml:"profile"`
	Speed        float64 `yaml:"speed"`
}

// Layer is one playlist with its transition timing.
type Layer struct {
	Name               string           `yaml:"name"`
	PresetDuration     float64          `yaml:"preset_duration"`
	TransitionDuration float64          `yaml:"transition_duration"`
	TransitionSlop     float64          `yaml:"transition_slop"`
	Transition         string           `yaml:"transition"`
	Blend              string           `yaml:"blend,omitempty"` // "overwrite" | "alpha" | "add"
	Program            playlist.Program `yaml:"program"`
}

type Config struct {
	Driver     string  `yaml:"driver"` // "spi" | "nrz" | "serial" | "sim"
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`
	Listen     string  `yaml:"listen"`

	Dim             Dim     `yaml:"dim"`
	PitchMM         float64 `yaml:"pitch_mm"`
	PanelGapMM      float64 `yaml:"panel_gap_mm"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel"`

	Power  PowerCfg `yaml:"power"`
	SPI    SPI      `yaml:"spi,omitempty"`
	Serial Serial   `yaml:"serial,omitempty"`
	MIDI   MIDI     `yaml:"midi,omitempty"`

	Mixer  Mixer   `yaml:"mixer"`
	Layers []Layer `yaml:"layers"`
}

// Default is an 8x8x8 cube on the simulator playing a short demo loop.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		ColorOrder: "GRB",
		Brightness: 1,
		Listen:     ":8080",
		Dim:        Dim{X: 8, Y: 8, Z: 8},
		PitchMM:    25,
		PanelGapMM: 0,
		Power:      PowerCfg{LimitAmps: 35, WhiteCap: 0.85},
		SPI:        SPI{Dev: "/dev/spidev0.0", SpeedHz: 2400000, ResetUs: 300},
		Serial:     Serial{Baud: 921600},
		MIDI:       MIDI{Mapping: control.DefaultMapping()},
		Mixer:      Mixer{TickRate: 60, OnsetHoldoff: 0.1, Speed: 1},
		Layers: []Layer{{
			Name:               "main",
			PresetDuration:     30,
			TransitionDuration: 3,
			TransitionSlop:     10,
			Transition:         "Random",
			Program: playlist.Program{
				Version: "playlist.v1",
				Entries: []playlist.Entry{
					{Name: "spiral", Kind: "spiral"},
					{Name: "gradient", Kind: "gradient", Params: map[string]float64{"speed": 0.1}},
					{Name: "ocean", Kind: "ocean"},
					{Name: "beat", Kind: "beat"},
				},
			},
		}},
	}
}

// Validate rejects settings the mixer cannot run with.
func (c *Config) Validate() error {
	if c.Dim.X <= 0 || c.Dim.Y <= 0 || c.Dim.Z <= 0 {
		return fmt.Errorf("dim %dx%dx%d: every axis must be positive", c.Dim.X, c.Dim.Y, c.Dim.Z)
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		return fmt.Errorf("brightness %v out of [0,1]", c.Brightness)
	}
	if c.Mixer.TickRate < 0 {
		return fmt.Errorf("tick_rate %v is negative", c.Mixer.TickRate)
	}
	if len(c.Layers) == 0 {
		return fmt.Errorf("no layers configured")
	}
	seen := map[string]bool{}
	for _, l := range c.Layers {
		if seen[l.Name] {
			return fmt.Errorf("layer %q declared twice", l.Name)
		}
		seen[l.Name] = true
		if _, err := render.ParseBlendMode(l.Blend); err != nil {
			return fmt.Errorf("layer %q: %w", l.Name, err)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.Layers = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(c.Layers) == 0 {
		c.Layers = Default().Layers
	}
	return c, c.Validate()
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
