// Package config loads, creates, and saves the per-repo ".autogit.json"
// configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the config file name expected at the repository root.
const FileName = ".autogit.json"

// Config is the on-disk shape of .autogit.json.
type Config struct {
	IntervalSeconds int      `json:"interval_seconds"`
	Exclude         []string `json:"exclude"`
	Enabled         bool     `json:"enabled"`
}

// Default returns the configuration used when no .autogit.json exists yet.
func Default() *Config {
	return &Config{
		IntervalSeconds: 60,
		Exclude:         []string{"node_modules", ".git", "dist", "build", "target", ".next"},
		Enabled:         true,
	}
}

// Path returns the path to the config file for a repo root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}

// LoadOrCreate reads .autogit.json from repoRoot, writing the default
// payload first if it doesn't exist. interval_seconds is clamped to at
// least 1 after a successful parse, per the daemon's minimum-interval
// invariant.
func LoadOrCreate(repoRoot string) (*Config, error) {
	path := Path(repoRoot)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := Save(repoRoot, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 1
	}

	return &cfg, nil
}

// Save serializes cfg as pretty-printed JSON and overwrites the config file
// at repoRoot. Config durability is not critical, so a plain write (not an
// atomic rename) is sufficient, matching the spec's explicit allowance.
func Save(repoRoot string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", FileName, err)
	}
	if err := os.WriteFile(Path(repoRoot), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}

// Validate checks a config for values that would make the daemon behave in
// a surprising way (negative interval, empty exclude entries) without
// rejecting an otherwise-valid file.
func Validate(cfg *Config) []error {
	var errs []error
	if cfg.IntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("interval_seconds must not be negative, got %d", cfg.IntervalSeconds))
	}
	for i, pattern := range cfg.Exclude {
		if pattern == "" {
			errs = append(errs, fmt.Errorf("exclude[%d]: pattern must not be empty", i))
		}
	}
	return errs
}

// MinInterval returns the effective minimum commit interval: the configured
// interval clamped to at least 1 second, regardless of what was read from
// disk. This complements the clamp already applied in LoadOrCreate, since
// callers may also construct a Config directly (e.g. via set_autogit_config).
func MinInterval(cfg *Config) int {
	if cfg.IntervalSeconds < 1 {
		return 1
	}
	return cfg.IntervalSeconds
}
