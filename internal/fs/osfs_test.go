package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 1234), 0o644))

	fi, err := New().Stat(path)
	require.NoError(t, err)
	assert.Equal(t, path, fi.Path)
	assert.Equal(t, int64(1234), fi.Size)
	assert.False(t, fi.MTime.IsZero())
}

func TestLocked(t *testing.T) {
	dir := t.TempDir()

	// missing path is never locked
	assert.False(t, New().Locked(filepath.Join(dir, "absent.tar.zst")))

	// a plain writable file is not locked
	path := filepath.Join(dir, "present.tar.zst")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.False(t, New().Locked(path))
}
