package run

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaska/coldpack/internal/config"
)

// fakeProber hands out sizes keyed by folder base name. Folders it
// does not know fail measurement.
type fakeProber struct{ sizes map[string]int64 }

func (p fakeProber) Measure(_ context.Context, dir string) (int64, error) {
	n, ok := p.sizes[filepath.Base(dir)]
	if !ok {
		return 0, errors.New("no estimate")
	}
	return n, nil
}

// fakeArchiver writes a canned container and remembers what it was
// asked to build.
type fakeArchiver struct {
	calls int
	dirs  []string
}

func (a *fakeArchiver) Archive(_ context.Context, dir, dest string) error {
	a.calls++
	a.dirs = append(a.dirs, filepath.Base(dir))
	return os.WriteFile(dest, []byte("container"), 0o644)
}

func (a *fakeArchiver) Verify(context.Context, string) error { return nil }

// cancellingArchiver kills the run from inside its first invocation.
type cancellingArchiver struct {
	cancel context.CancelFunc
	calls  int
}

func (a *cancellingArchiver) Archive(ctx context.Context, _, _ string) error {
	a.calls++
	a.cancel()
	return ctx.Err()
}

func (a *cancellingArchiver) Verify(context.Context, string) error { return nil }

func testConfig(src string) *config.Config {
	cfg := config.Default()
	cfg.Source.Path = src
	cfg.Output.Path = filepath.Join(src, "archives")
	cfg.Buckets.Start = "<1 GB"
	cfg.Buckets.End = "10-50 GB"
	cfg.Archive.Retries = 1
	cfg.Archive.RetrySleep = time.Millisecond
	cfg.Archive.DeleteAfterArchive = false
	return cfg
}

// sourceTree creates the folders the tests scan. delta is out of the
// configured bucket range, omega has no measurable size.
func sourceTree(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	for _, name := range []string{"alpha", "beta", "gamma", "delta", "omega"} {
		require.NoError(t, os.Mkdir(filepath.Join(src, name), 0o755))
	}
	return src
}

func treeSizes() map[string]int64 {
	return map[string]int64{
		"beta":  214748365,   // 0.20 GB
		"gamma": 2147483648,  // 2.00 GB
		"alpha": 9663676416,  // 9.00 GB
		"delta": 64424509440, // 60.00 GB, outside the range
	}
}

func newRunner(t *testing.T, cfg *config.Config, arch *fakeArchiver) *Runner {
	t.Helper()
	log, _ := test.NewNullLogger()
	r := New(cfg, log, fakeProber{sizes: treeSizes()}, arch, nil)
	r.SetSummaryWriter(&bytes.Buffer{})
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func globOne(t *testing.T, dir, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1, pattern)
	return matches[0]
}

func TestRunEndToEnd(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	arch := &fakeArchiver{}
	r := newRunner(t, cfg, arch)

	require.NoError(t, r.Run(context.Background()))

	// buckets in order, smallest folder first inside each
	assert.Equal(t, []string{"beta", "gamma", "alpha"}, arch.dirs)

	out := cfg.Output.Path
	for _, name := range []string{"beta", "gamma", "alpha"} {
		_, err := os.Stat(filepath.Join(out, name+".tar.zst"))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(out, "delta.tar.zst"))
	assert.True(t, os.IsNotExist(err), "delta sits outside the bucket range")
	_, err = os.Stat(filepath.Join(out, "omega.tar.zst"))
	assert.True(t, os.IsNotExist(err), "omega was never measured")

	for _, pattern := range []string{
		"scan_*.csv", "scan_*.json", "scan_*.txt",
		"grouped_scan_*.csv", "input_vs_output_*.csv", "archive_log_*.csv",
	} {
		globOne(t, out, pattern)
	}

	rows := readCSV(t, globOne(t, out, "archive_log_*.csv"))
	require.Len(t, rows, 4, "header plus one row per processed folder")
	assert.Equal(t, "beta", filepath.Base(rows[1][1]))
	assert.Equal(t, "ARCHIVED", rows[1][4])
	assert.Equal(t, "gamma", filepath.Base(rows[2][1]))
	assert.Equal(t, "alpha", filepath.Base(rows[3][1]))
}

func TestRunTotalsBeforeProcessing(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	r := newRunner(t, cfg, &fakeArchiver{})

	require.NoError(t, r.Run(context.Background()))

	rows := readCSV(t, globOne(t, cfg.Output.Path, "input_vs_output_*.csv"))
	require.Len(t, rows, 2)
	// 0.20 + 2 + 9 + 60, the unmeasured folder contributes nothing
	assert.Equal(t, "71.20", rows[1][2])
	// the comparison runs before anything is archived
	assert.Equal(t, "0.00", rows[1][3])
}

func TestRunWritesSummary(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	log, _ := test.NewNullLogger()
	r := New(cfg, log, fakeProber{sizes: treeSizes()}, &fakeArchiver{}, nil)

	var buf bytes.Buffer
	r.SetSummaryWriter(&buf)
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, buf.String(), "Bucket Summary:")
	assert.Contains(t, buf.String(), "<1 GB")
}

func TestRunCancelledStillWritesArchiveLog(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	arch := &cancellingArchiver{cancel: cancel}

	log, _ := test.NewNullLogger()
	r := New(cfg, log, fakeProber{sizes: treeSizes()}, arch, nil)
	r.SetSummaryWriter(&bytes.Buffer{})

	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, arch.calls, "cancellation stops before the next folder")

	rows := readCSV(t, globOne(t, cfg.Output.Path, "archive_log_*.csv"))
	require.Len(t, rows, 2, "the folder that was cut short is still logged")
	assert.Equal(t, "ARCHIVE_FAILED", rows[1][4])

	// the scan artifacts were persisted before processing started
	globOne(t, cfg.Output.Path, "scan_*.csv")
}

func TestRunMissingSource(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "gone"))
	r := newRunner(t, cfg, &fakeArchiver{})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source root")
}

func TestRunEmptySource(t *testing.T) {
	cfg := testConfig(t.TempDir())
	r := newRunner(t, cfg, &fakeArchiver{})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no folders found")
}

func TestRunRejectsBadRetentionRule(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	cfg.Output.Retention.Rules = []config.RetentionRule{{Name: "weekly", Cron: "bogus", Count: 2}}
	arch := &fakeArchiver{}
	r := newRunner(t, cfg, arch)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekly")
	assert.Zero(t, arch.calls, "nothing runs on a broken config")
}

func TestRunAppliesRetention(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	cfg.Output.Retention.LastCount = 1
	require.NoError(t, os.MkdirAll(cfg.Output.Path, 0o755))
	stale := filepath.Join(cfg.Output.Path, "scan_20200101_090000.csv")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	r := newRunner(t, cfg, &fakeArchiver{})
	require.NoError(t, r.Run(context.Background()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "older report sets are pruned after the run")
	globOne(t, cfg.Output.Path, "scan_*.csv")
}

func TestScanModeWritesReportsOnly(t *testing.T) {
	src := sourceTree(t)
	cfg := testConfig(src)
	arch := &fakeArchiver{}
	r := newRunner(t, cfg, arch)

	require.NoError(t, r.Scan(context.Background()))

	out := cfg.Output.Path
	globOne(t, out, "scan_*.csv")
	globOne(t, out, "grouped_scan_*.csv")
	globOne(t, out, "input_vs_output_*.csv")

	assert.Zero(t, arch.calls)
	containers, err := filepath.Glob(filepath.Join(out, "*.tar.zst"))
	require.NoError(t, err)
	assert.Empty(t, containers)
	logs, err := filepath.Glob(filepath.Join(out, "archive_log_*.csv"))
	require.NoError(t, err)
	assert.Empty(t, logs, "scan mode processes nothing, so there is no archive log")
}
