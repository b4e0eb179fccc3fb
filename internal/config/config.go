// Package config loads the orrery's settings from defaults, an optional
// YAML file, ORRERY_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/render"
	"github.com/litescript/ls-orrery/internal/system"
)

// EnvPrefix prefixes environment overrides, e.g. ORRERY_ANIMATION_FPS.
const EnvPrefix = "ORRERY"

// Frame-rate bounds accepted from configuration.
const (
	MinFPS = 1
	MaxFPS = 120
)

var (
	ErrFPS       = errors.New("fps out of range")
	ErrTimeScale = errors.New("time scale must be positive and finite")
	ErrLogLevel  = errors.New("unknown log level")
)

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"` // empty logs to stderr in headless mode, nowhere in the TUI
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // empty disables the endpoint
}

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Animation anim.Config    `yaml:"animation" mapstructure:"animation"`
	Display   render.Options `yaml:"display" mapstructure:"display"`
	Bodies    system.Config  `yaml:"bodies" mapstructure:"bodies"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Log:       LogConfig{Level: "info"},
		Animation: anim.DefaultConfig(),
		Display:   render.DefaultOptions(),
		Bodies:    system.DefaultConfig(),
	}
}

// New returns a viper instance with scalar defaults registered so that
// environment variables and bound flags can override them.
func New() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("metrics.addr", def.Metrics.Addr)

	a := def.Animation
	v.SetDefault("animation.fps", a.FPS)
	v.SetDefault("animation.time_scale", a.TimeScale)
	v.SetDefault("animation.trail_length", a.TrailLength)
	v.SetDefault("animation.tilt", a.Tilt)
	v.SetDefault("animation.max_scale", a.MaxScale)
	v.SetDefault("animation.margin", a.Margin)
	v.SetDefault("animation.seed", a.Seed)

	d := def.Display
	v.SetDefault("display.show_orbits", d.ShowOrbits)
	v.SetDefault("display.show_trails", d.ShowTrails)
	v.SetDefault("display.show_labels", d.ShowLabels)
	v.SetDefault("display.show_glow", d.ShowGlow)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into a Config. An explicit path must exist;
// without one, orrery.yaml is looked up in the working directory and
// ~/.config/ls-orrery, and a missing file is not an error. Body
// descriptors are not validated here; system.Compile reports those.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("orrery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ls-orrery"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	// Lists from the file replace the defaults instead of merging into them
	// element by element.
	zero := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
	})
	if err := v.Unmarshal(&cfg, zero); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the non-body settings.
func (c Config) Validate() error {
	var errs []error
	if c.Animation.FPS < MinFPS || c.Animation.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("animation.fps %d: %w", c.Animation.FPS, ErrFPS))
	}
	if ts := c.Animation.TimeScale; !(ts > 0) || math.IsInf(ts, 0) {
		errs = append(errs, fmt.Errorf("animation.time_scale %v: %w", ts, ErrTimeScale))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: %w", c.Log.Level, ErrLogLevel))
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// Write encodes c as YAML.
func Write(w io.Writer, c Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
