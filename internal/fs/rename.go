package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// wraps os.Rename with retry logic and replace semantics.
// It provides the atomic publication step for finished archives.

func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	err := retry(ctx, "rename", func() error {
		err := os.Rename(oldPath, newPath)
		if err == nil || !errors.Is(err, os.ErrExist) {
			return err
		}

		// POSIX rename replaces in one step; Windows refuses while the
		// destination exists, so clear it and go again.
		if rmErr := os.Remove(newPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return rmErr
		}
		return os.Rename(oldPath, newPath)
	})
	if err != nil {
		return err
	}

	syncDir(filepath.Dir(newPath))
	return nil
}

// syncDir flushes the directory entry so a crash right after
// publication cannot lose the rename. Filesystems that reject Sync on
// directories just skip it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
