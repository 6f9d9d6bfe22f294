package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaska/coldpack/internal/config"
)

// writeSet drops the full artifact set of one run into dir.
func writeSet(t *testing.T, dir, stamp string) {
	t.Helper()
	names := []string{
		"scan_" + stamp + ".csv",
		"scan_" + stamp + ".json",
		"scan_" + stamp + ".txt",
		"grouped_scan_" + stamp + ".csv",
		"input_vs_output_" + stamp + ".csv",
		"archive_log_" + stamp + ".csv",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func setPresent(t *testing.T, dir, stamp string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, "scan_"+stamp+".csv"))
	if err == nil {
		return true
	}
	require.True(t, os.IsNotExist(err))
	return false
}

func newEngine(t *testing.T, cfg config.RetentionConfig) *Engine {
	t.Helper()
	log, _ := test.NewNullLogger()
	e, err := New(cfg, log)
	require.NoError(t, err)
	return e
}

func TestApplyKeepLast(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")
	writeSet(t, dir, "20240102_090000")
	writeSet(t, dir, "20240103_090000")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.tar.zst"), []byte("x"), 0o644))

	e := newEngine(t, config.RetentionConfig{LastCount: 2})
	require.NoError(t, e.Apply(context.Background(), dir))

	assert.False(t, setPresent(t, dir, "20240101_090000"))
	assert.True(t, setPresent(t, dir, "20240102_090000"))
	assert.True(t, setPresent(t, dir, "20240103_090000"))

	// the whole set goes, not just the csv
	_, err := os.Stat(filepath.Join(dir, "archive_log_20240101_090000.csv"))
	assert.True(t, os.IsNotExist(err))

	// archives are never retention targets
	_, err = os.Stat(filepath.Join(dir, "alpha.tar.zst"))
	assert.NoError(t, err)
}

func TestApplyDisabled(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")

	e := newEngine(t, config.RetentionConfig{})
	require.NoError(t, e.Apply(context.Background(), dir))

	assert.True(t, setPresent(t, dir, "20240101_090000"))
}

func TestApplyCronRule(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")
	writeSet(t, dir, "20240101_170000")
	writeSet(t, dir, "20240102_100000")
	writeSet(t, dir, "20240103_110000")

	e := newEngine(t, config.RetentionConfig{
		Rules: []config.RetentionRule{{Name: "daily", Cron: "0 0 * * *", Count: 3}},
	})
	require.NoError(t, e.Apply(context.Background(), dir))

	// two runs on Jan 1 compete for one daily slot, the later one wins
	assert.False(t, setPresent(t, dir, "20240101_090000"))
	assert.True(t, setPresent(t, dir, "20240101_170000"))
	assert.True(t, setPresent(t, dir, "20240102_100000"))
	assert.True(t, setPresent(t, dir, "20240103_110000"))
}

func TestApplyCronRuleBoundsPeriods(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")
	writeSet(t, dir, "20240102_100000")
	writeSet(t, dir, "20240103_110000")

	e := newEngine(t, config.RetentionConfig{
		Rules: []config.RetentionRule{{Name: "daily", Cron: "0 0 * * *", Count: 2}},
	})
	require.NoError(t, e.Apply(context.Background(), dir))

	assert.False(t, setPresent(t, dir, "20240101_090000"))
	assert.True(t, setPresent(t, dir, "20240102_100000"))
	assert.True(t, setPresent(t, dir, "20240103_110000"))
}

func TestApplyRulesUnionWithKeepLast(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")
	writeSet(t, dir, "20240105_090000")
	writeSet(t, dir, "20240105_170000")

	// keep-last claims the newest set, the daily rule reaches further
	// back and additionally claims the newest set of Jan 1
	e := newEngine(t, config.RetentionConfig{
		LastCount: 1,
		Rules:     []config.RetentionRule{{Name: "daily", Cron: "0 0 * * *", Count: 2}},
	})
	require.NoError(t, e.Apply(context.Background(), dir))

	assert.True(t, setPresent(t, dir, "20240101_090000"))
	assert.False(t, setPresent(t, dir, "20240105_090000"))
	assert.True(t, setPresent(t, dir, "20240105_170000"))
}

func TestApplyIgnoresUnstampedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "20240101_090000")
	writeSet(t, dir, "20240102_090000")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan_notes.txt"), []byte("x"), 0o644))

	e := newEngine(t, config.RetentionConfig{LastCount: 1})
	require.NoError(t, e.Apply(context.Background(), dir))

	_, err := os.Stat(filepath.Join(dir, "scan_notes.txt"))
	assert.NoError(t, err)
}

func TestNewRejectsBadCron(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := New(config.RetentionConfig{
		Rules: []config.RetentionRule{{Name: "broken", Cron: "not a cron", Count: 1}},
	}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
