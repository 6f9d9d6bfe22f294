package sizeprobe

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
)

// WalkProber sums regular file sizes by walking the tree in-process.
// Slower than a native utility on deep trees, but needs nothing
// installed.
type WalkProber struct{}

func (WalkProber) Measure(ctx context.Context, dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("size probe walk %s: %w", dir, err)
	}
	return total, nil
}
