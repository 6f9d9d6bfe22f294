package config

import (
	"fmt"
	"path/filepath"
)

// normalizes and checks a config after flag overrides were applied.

const (
	minLevel = 1
	maxLevel = 19
)

// Normalize fills derived values and clamps numeric settings into
// their working ranges. It must run before Validate.
func (c *Config) Normalize() error {
	if c.Source.Path != "" {
		abs, err := filepath.Abs(c.Source.Path)
		if err != nil {
			return fmt.Errorf("resolving source path: %w", err)
		}
		c.Source.Path = abs
	}

	if c.Output.Path == "" && c.Source.Path != "" {
		c.Output.Path = filepath.Join(c.Source.Path, "archives")
	}
	if c.Output.Path != "" {
		abs, err := filepath.Abs(c.Output.Path)
		if err != nil {
			return fmt.Errorf("resolving output path: %w", err)
		}
		c.Output.Path = abs
	}

	if c.Archive.Level == 0 {
		c.Archive.Level = Default().Archive.Level
	}
	if c.Archive.Level < minLevel {
		c.Archive.Level = minLevel
	}
	if c.Archive.Level > maxLevel {
		c.Archive.Level = maxLevel
	}
	if c.Archive.Threads < 0 {
		c.Archive.Threads = 0
	}
	if c.Archive.Retries < 1 {
		c.Archive.Retries = 1
	}
	if c.Archive.RetrySleep < 0 {
		c.Archive.RetrySleep = 0
	}
	if c.Probe.Timeout < 0 {
		c.Probe.Timeout = 0
	}

	return nil
}

// Validate rejects configs that cannot run at all. Bucket labels are
// deliberately not checked here: unknown labels fall back to defaults
// at range selection.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}

	switch c.Archive.Mode {
	case "exec", "native":
	default:
		return fmt.Errorf("archive.mode %q: must be \"exec\" or \"native\"", c.Archive.Mode)
	}

	switch c.Probe.Mode {
	case "command", "walk":
	default:
		return fmt.Errorf("probe.mode %q: must be \"command\" or \"walk\"", c.Probe.Mode)
	}

	for _, r := range c.Output.Retention.Rules {
		if r.Cron == "" {
			return fmt.Errorf("retention rule %q: cron expression is required", r.Name)
		}
		if r.Count < 1 {
			return fmt.Errorf("retention rule %q: count must be positive", r.Name)
		}
	}

	return nil
}
