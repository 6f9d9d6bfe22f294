// Package fs defines the filesystem abstraction used by coldpack.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"time"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
}

type FS interface {
	Stat(path string) (FileInfo, error)
	MkdirAll(path string) error
	Remove(path string) error
	RemoveAll(path string) error
	// Rename moves oldPath over newPath, replacing it when present.
	Rename(ctx context.Context, oldPath, newPath string) error
	// Locked reports whether path is held open exclusively elsewhere.
	// A missing path is never locked.
	Locked(path string) bool
}
