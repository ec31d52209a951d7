package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid config")

// Config holds runtime parameters for scape
// Zero values are replaced by Defaults in Load
type Config struct {
	Host     HostConfig    `toml:"host" yaml:"host"`
	Content  ContentConfig `toml:"content" yaml:"content"`
	Audio    AudioConfig   `toml:"audio" yaml:"audio"`
	Log      LogConfig     `toml:"log" yaml:"log"`
	Metrics  MetricsConfig `toml:"metrics" yaml:"metrics"`
	Manifest string        `toml:"manifest" yaml:"manifest"`
}

type HostConfig struct {
	CursorVisible *bool `toml:"cursor_visible" yaml:"cursor_visible"`
	FixedTimestep bool  `toml:"fixed_timestep" yaml:"fixed_timestep"`
	TickRate      int   `toml:"tick_rate" yaml:"tick_rate"`
}

type ContentConfig struct {
	Root          string `toml:"root" yaml:"root"`
	MaxLineLength int    `toml:"max_line_length" yaml:"max_line_length"`
}

type AudioConfig struct {
	Enabled    *bool `toml:"enabled" yaml:"enabled"`
	SampleRate int   `toml:"sample_rate" yaml:"sample_rate"`
}

type LogConfig struct {
	Level     string `toml:"level" yaml:"level"`
	File      string `toml:"file" yaml:"file"`
	MaxSizeMB int    `toml:"max_size_mb" yaml:"max_size_mb"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set
type MetricsConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Defaults returns the configuration used when no file is given
func Defaults() Config {
	visible, enabled := true, true
	return Config{
		Host: HostConfig{
			CursorVisible: &visible,
			TickRate:      60,
		},
		Content: ContentConfig{
			Root:          "content",
			MaxLineLength: 80,
		},
		Audio: AudioConfig{
			Enabled:    &enabled,
			SampleRate: 48000,
		},
		Log: LogConfig{
			Level:     "info",
			File:      filepath.Join("logs", "scape.log"),
			MaxSizeMB: 10,
		},
		Metrics: MetricsConfig{
			Namespace: "scape",
		},
		Manifest: "scape.yaml",
	}
}

// Load reads a configuration file based on its extension and fills unset fields from Defaults
// Supports: .toml, .yaml/.yml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Host.CursorVisible == nil {
		c.Host.CursorVisible = d.Host.CursorVisible
	}
	if c.Host.TickRate == 0 {
		c.Host.TickRate = d.Host.TickRate
	}
	if c.Content.Root == "" {
		c.Content.Root = d.Content.Root
	}
	if c.Content.MaxLineLength == 0 {
		c.Content.MaxLineLength = d.Content.MaxLineLength
	}
	if c.Audio.Enabled == nil {
		c.Audio.Enabled = d.Audio.Enabled
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Manifest == "" {
		c.Manifest = d.Manifest
	}
}

// Validate rejects values the host cannot run with
func (c Config) Validate() error {
	if c.Host.TickRate < 1 || c.Host.TickRate > 1000 {
		return fmt.Errorf("%w: tick_rate %d out of range [1,1000]", ErrInvalid, c.Host.TickRate)
	}
	if c.Content.MaxLineLength < 0 {
		return fmt.Errorf("%w: negative max_line_length", ErrInvalid)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("%w: negative sample_rate", ErrInvalid)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("%w: negative max_size_mb", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// LogLevel returns the parsed log level, info when unset
func (c Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// CursorVisible resolves the optional flag
func (c Config) CursorVisible() bool {
	return c.Host.CursorVisible == nil || *c.Host.CursorVisible
}

// AudioEnabled resolves the optional flag
func (c Config) AudioEnabled() bool {
	return c.Audio.Enabled == nil || *c.Audio.Enabled
}
