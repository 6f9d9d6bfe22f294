// Package worker drives one folder at a time through the archive
// decision chain: skip checks, the archive pipeline with bounded
// retries, and the optional verify-then-delete of the source.
package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/archive"
	"github.com/mlaska/coldpack/internal/config"
	"github.com/mlaska/coldpack/internal/fs"
	"github.com/mlaska/coldpack/internal/scan"
)

// Worker archives scanned folders into the output root.
type Worker struct {
	cfg     config.ArchiveConfig
	outRoot string
	fs      fs.FS
	arch    archive.Archiver
	log     logrus.FieldLogger
}

// New creates a worker. The config is assumed normalized. A nil
// filesystem selects the default.
func New(cfg config.ArchiveConfig, outRoot string, log logrus.FieldLogger, arch archive.Archiver, filesystem fs.FS) *Worker {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Worker{
		cfg:     cfg,
		outRoot: outRoot,
		fs:      filesystem,
		arch:    arch,
		log:     log,
	}
}

// Process runs one folder to a terminal status. It never returns an
// error: every failure mode becomes a status plus note in the outcome,
// so one bad folder cannot stop the batch.
func (w *Worker) Process(ctx context.Context, rec scan.FolderRecord) Outcome {
	out := Outcome{
		Bucket:    rec.Bucket,
		Folder:    rec.Path,
		SizeGB:    rec.SizeGB,
		SizeKnown: rec.SizeKnown,
	}
	log := w.log.WithField("folder", rec.Name)

	// the folder may have vanished between scan and processing
	if _, err := w.fs.Stat(rec.Path); err != nil {
		out.Status = StatusMissing
		log.Warn("source folder missing, skipping")
		return out
	}

	dest := filepath.Join(w.outRoot, rec.Name+archive.Ext)
	out.Archive = dest

	if w.cfg.SkipExisting {
		if _, err := w.fs.Stat(dest); err == nil {
			out.Status = StatusSkipExists
			log.Info("archive already exists, skipping")
			return out
		}
	}

	if w.fs.Locked(dest) {
		out.Status = StatusSkipLocked
		log.Warn("archive held by another process, skipping")
		return out
	}

	log.WithFields(logrus.Fields{
		"size_gb": rec.SizeGB,
		"dest":    filepath.Base(dest),
	}).Info("archiving folder")

	if err := w.archiveWithRetry(ctx, rec.Path, dest, log); err != nil {
		out.Status = StatusArchiveFailed
		out.Note = err.Error()
		log.WithError(err).Error("archiving failed")
		return out
	}
	out.Status = StatusArchived
	log.Info("archived")

	if !w.cfg.DeleteAfterArchive {
		return out
	}

	if w.cfg.VerifyBeforeDelete {
		if err := w.arch.Verify(ctx, dest); err != nil {
			out.Note = "kept source, verify failed: " + err.Error()
			log.WithError(err).Error("container verify failed, keeping source")
			return out
		}
	}
	if err := w.fs.RemoveAll(rec.Path); err != nil {
		out.Note = "delete failed: " + err.Error()
		log.WithError(err).Error("deleting source failed")
		return out
	}
	out.Status = StatusDeleted
	log.Info("source deleted")
	return out
}

// archiveWithRetry runs the pipeline into a temp path and publishes it
// over dest, retrying the whole attempt on failure. A failed attempt
// leaves its temp file behind for inspection; the next attempt clears
// it first so the pipeline never appends to a half-written container.
func (w *Worker) archiveWithRetry(ctx context.Context, dir, dest string, log logrus.FieldLogger) error {
	tmp := archive.TempPath(dest)
	retries := w.cfg.Retries
	if retries < 1 {
		retries = 1
	}

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			log.WithFields(logrus.Fields{
				"attempt": attempt, "of": retries,
			}).Info("retrying archive")
		}

		if _, err := w.fs.Stat(tmp); err == nil {
			if err := w.fs.Remove(tmp); err != nil {
				return fmt.Errorf("clearing stale temp file: %w", err)
			}
		}

		if err := w.arch.Archive(ctx, dir, tmp); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("cancelled: %w", err))
			}
			return err
		}

		if err := w.fs.Rename(ctx, tmp, dest); err != nil {
			return fmt.Errorf("publishing archive: %w", err)
		}
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.cfg.RetrySleep), uint64(retries-1)),
		ctx,
	)
	return backoff.Retry(op, b)
}
