// Package config loads and saves Nereid's TOML configuration: durability
// mode, session root, layout tunables, and the recents-index path.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the session-folder schema version this build writes and
// the constraint it accepts on load, gating meta.json's "format_version"
// field per SPEC_FULL.md §C.
const FormatVersion = "1.0.0"

// FormatVersionConstraint is the semver range of session-folder formats
// this build can load.
const FormatVersionConstraint = "^1.0.0"

// Durability selects whether session folder writes fsync.
type Durability string

const (
	// Relaxed skips fsync; the default.
	Relaxed Durability = "relaxed"
	// Durable fsyncs each written file and, on Unix, its parent directory.
	Durable Durability = "durable"
)

// LayoutConfig holds the layout gap settings read from the config file and
// checked by Validate. flowlayout and routing use their own fixed constants
// and do not read these values.
type LayoutConfig struct {
	VGap int `toml:"v_gap"`
	HGap int `toml:"h_gap"`
}

// Config is Nereid's root configuration.
type Config struct {
	SessionRoot string       `toml:"session_root"`
	Durability  Durability   `toml:"durability"`
	RecentsDB   string       `toml:"recents_db"`
	Layout      LayoutConfig `toml:"layout"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		SessionRoot: filepath.Join(home, "nereid", "sessions"),
		Durability:  Relaxed,
		RecentsDB:   filepath.Join(home, ".nereid", "recents.db"),
		Layout:      LayoutConfig{VGap: 2, HGap: 3},
	}
}

// Load reads and decodes a TOML config file at path, filling unset fields
// from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save encodes cfg as TOML to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}

// Validate checks field values that toml decoding can't enforce on its own.
func (c Config) Validate() error {
	if c.Durability != Relaxed && c.Durability != Durable {
		return fmt.Errorf("config: durability must be %q or %q, got %q", Relaxed, Durable, c.Durability)
	}
	if c.Layout.VGap < 2 {
		return fmt.Errorf("config: layout.v_gap must be >= 2, got %d", c.Layout.VGap)
	}
	if c.Layout.HGap < 3 {
		return fmt.Errorf("config: layout.h_gap must be >= 3, got %d", c.Layout.HGap)
	}
	return nil
}

// CheckFormatVersion reports whether a loaded session folder's
// format_version satisfies FormatVersionConstraint.
func CheckFormatVersion(raw string) error {
	if raw == "" {
		return nil // absent field defaults to compatible, per meta.json's "unknown fields ignored" rule
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("session format_version %q: %w", raw, err)
	}
	constraint, err := semver.NewConstraint(FormatVersionConstraint)
	if err != nil {
		return fmt.Errorf("internal format version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("session format_version %q is not compatible with %s", raw, FormatVersionConstraint)
	}
	return nil
}
