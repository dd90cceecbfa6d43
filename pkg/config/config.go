// Package config loads dotsink settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/dotsink/config.toml (or
// ~/.config/dotsink/config.toml) and is optional:
//
//	[renderer]
//	command = "dot"
//	args = ["-Gdpi=150"]
//
//	[output]
//	format = "svg"
//	tee = true
//
//	[cache]
//	enabled = true
//	ttl = "168h"
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
	"github.com/matzehuels/dotsink/pkg/sink"
)

const appName = "dotsink"

// Config holds all settings.
type Config struct {
	Renderer Renderer `toml:"renderer"`
	Output   Output   `toml:"output"`
	Cache    Cache    `toml:"cache"`
}

// Renderer selects the external layout program.
type Renderer struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Output holds defaults for render jobs.
type Output struct {
	Format string `toml:"format"`
	Tee    bool   `toml:"tee"`
}

// Cache controls the rendered-artifact cache.
type Cache struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Renderer: Renderer{Command: sink.DefaultRenderer},
		Output:   Output{Format: "png"},
		Cache:    Cache{Enabled: true, TTL: Duration{7 * 24 * time.Hour}},
	}
}

// Load reads path on top of [Default]. A missing file yields the defaults.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, derrors.New(derrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the renderer command, format and cache TTL.
func (c Config) Validate() error {
	if err := derrors.ValidateCommand(c.Renderer.Command); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "renderer.command")
	}
	if err := derrors.ValidateFormat(c.Output.Format); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "output.format")
	}
	if c.Cache.TTL.Duration < 0 {
		return derrors.New(derrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
