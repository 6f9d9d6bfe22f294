package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDerivesOutputPath(t *testing.T) {
	src := t.TempDir()
	cfg := Default()
	cfg.Source.Path = src

	require.NoError(t, cfg.Normalize())
	assert.Equal(t, filepath.Join(src, "archives"), cfg.Output.Path)
}

func TestNormalizeKeepsExplicitOutputPath(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	cfg := Default()
	cfg.Source.Path = src
	cfg.Output.Path = out

	require.NoError(t, cfg.Normalize())
	assert.Equal(t, out, cfg.Output.Path)
}

func TestNormalizeClampsNumericSettings(t *testing.T) {
	cfg := Default()
	cfg.Source.Path = t.TempDir()
	cfg.Archive.Level = 99
	cfg.Archive.Threads = -2
	cfg.Archive.Retries = 0
	cfg.Archive.RetrySleep = -1
	cfg.Probe.Timeout = -1

	require.NoError(t, cfg.Normalize())
	assert.Equal(t, 19, cfg.Archive.Level)
	assert.Equal(t, 0, cfg.Archive.Threads)
	assert.Equal(t, 1, cfg.Archive.Retries)
	assert.Zero(t, cfg.Archive.RetrySleep)
	assert.Zero(t, cfg.Probe.Timeout)

	cfg.Archive.Level = 0
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, 12, cfg.Archive.Level, "unset level selects the default")

	cfg.Archive.Level = -4
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, 1, cfg.Archive.Level)
}

func TestValidate(t *testing.T) {
	good := func() *Config {
		cfg := Default()
		cfg.Source.Path = "/srv/projects"
		return cfg
	}

	require.NoError(t, good().Validate())

	cfg := good()
	cfg.Source.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "source.path")

	cfg = good()
	cfg.Archive.Mode = "tarball"
	assert.ErrorContains(t, cfg.Validate(), "archive.mode")

	cfg = good()
	cfg.Probe.Mode = "guess"
	assert.ErrorContains(t, cfg.Validate(), "probe.mode")

	cfg = good()
	cfg.Output.Retention.Rules = []RetentionRule{{Name: "weekly", Count: 4}}
	assert.ErrorContains(t, cfg.Validate(), "cron")

	cfg = good()
	cfg.Output.Retention.Rules = []RetentionRule{{Name: "weekly", Cron: "0 0 * * 0", Count: 0}}
	assert.ErrorContains(t, cfg.Validate(), "count")
}
