// Package scan enumerates the direct subfolders of the source root and
// measures each one.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/bucket"
	"github.com/mlaska/coldpack/internal/sizeprobe"
)

type Scanner struct {
	probe sizeprobe.Prober
	log   logrus.FieldLogger
}

func New(probe sizeprobe.Prober, log logrus.FieldLogger) *Scanner {
	return &Scanner{probe: probe, log: log}
}

// Scan measures every direct subfolder of root, skipping the output
// root when it sits inside the source. Records come back sorted by
// name, case-insensitive. A failed measurement marks that folder
// SIZE_FAILED and scanning continues; cancellation aborts the whole
// scan.
func (s *Scanner) Scan(ctx context.Context, root, outRoot string) ([]FolderRecord, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading source root: %w", err)
	}

	// the output root is compared by identity, not by path string, so
	// symlinked or case-folded spellings are still excluded
	outInfo, outErr := os.Stat(outRoot)

	var dirs []string
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		p := filepath.Join(root, ent.Name())
		if outErr == nil {
			if info, err := os.Stat(p); err == nil && os.SameFile(outInfo, info) {
				continue
			}
		}
		dirs = append(dirs, p)
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(filepath.Base(dirs[i])) < strings.ToLower(filepath.Base(dirs[j]))
	})

	records := make([]FolderRecord, 0, len(dirs))
	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := FolderRecord{Path: dir, Name: filepath.Base(dir)}
		s.log.WithFields(logrus.Fields{
			"index": i + 1, "total": len(dirs), "folder": rec.Name,
		}).Debug("measuring folder")

		n, err := s.probe.Measure(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			rec.Bucket = bucket.Unknown
			rec.Status = StatusSizeFailed
			s.log.WithFields(logrus.Fields{
				"folder": rec.Name, "error": err,
			}).Warn("size probe failed")
		} else {
			rec.SizeBytes = n
			rec.SizeGB = bucket.GBFromBytes(n)
			rec.SizeKnown = true
			rec.Bucket = bucket.FromGB(rec.SizeGB)
			rec.Status = StatusOK
			s.log.WithFields(logrus.Fields{
				"folder": rec.Name,
				"size":   humanize.IBytes(uint64(n)),
				"bucket": rec.Bucket,
			}).Info("measured folder")
		}

		records = append(records, rec)
	}

	return records, nil
}
