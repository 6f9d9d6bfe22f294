package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
source:
  path: /srv/projects
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/projects", cfg.Source.Path)
	assert.Equal(t, "<1 GB", cfg.Buckets.Start)
	assert.Equal(t, "10 TB+", cfg.Buckets.End)
	assert.Equal(t, "exec", cfg.Archive.Mode)
	assert.Equal(t, 12, cfg.Archive.Level)
	assert.Equal(t, 3, cfg.Archive.Retries)
	assert.Equal(t, 10*time.Second, cfg.Archive.RetrySleep)
	assert.True(t, cfg.Archive.SkipExisting)
	assert.True(t, cfg.Archive.VerifyBeforeDelete)
	assert.False(t, cfg.Archive.DeleteAfterArchive)
	assert.Equal(t, "command", cfg.Probe.Mode)
	assert.Equal(t, 4*time.Hour, cfg.Probe.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
source:
  path: /srv/projects
output:
  path: /mnt/cold
  retention:
    lastCount: 5
    rules:
      - name: weekly
        cron: "0 0 * * 0"
        count: 8
buckets:
  start: 1-10 GB
  end: 50-200 GB
archive:
  mode: native
  level: 19
  threads: 4
  retries: 5
  retrySleep: 250ms
  skipExisting: false
  deleteAfterArchive: true
probe:
  mode: walk
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "/mnt/cold", cfg.Output.Path)
	assert.Equal(t, 5, cfg.Output.Retention.LastCount)
	require.Len(t, cfg.Output.Retention.Rules, 1)
	assert.Equal(t, "weekly", cfg.Output.Retention.Rules[0].Name)
	assert.Equal(t, "1-10 GB", cfg.Buckets.Start)
	assert.Equal(t, "native", cfg.Archive.Mode)
	assert.Equal(t, 19, cfg.Archive.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Archive.RetrySleep)
	assert.False(t, cfg.Archive.SkipExisting)
	assert.True(t, cfg.Archive.DeleteAfterArchive)
	assert.Equal(t, "walk", cfg.Probe.Mode)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("COLDPACK_SRC", "/data/incoming")

	cfg, err := Load(writeConfig(t, `
source:
  path: $(COLDPACK_SRC)
`))
	require.NoError(t, err)
	assert.Equal(t, "/data/incoming", cfg.Source.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "source: [broken"))
	require.Error(t, err)
}
