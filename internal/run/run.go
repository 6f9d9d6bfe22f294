// Package run drives a whole batch pass: scan the source root,
// persist the reports, archive the selected buckets in order and
// prune old report sets. The scan-only variant stops after the
// reports.
package run

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/archive"
	"github.com/mlaska/coldpack/internal/bucket"
	"github.com/mlaska/coldpack/internal/config"
	"github.com/mlaska/coldpack/internal/fs"
	"github.com/mlaska/coldpack/internal/report"
	"github.com/mlaska/coldpack/internal/retention"
	"github.com/mlaska/coldpack/internal/scan"
	"github.com/mlaska/coldpack/internal/sizeprobe"
	"github.com/mlaska/coldpack/internal/worker"
)

// Runner owns the wiring of one configured source/output pair.
type Runner struct {
	cfg   *config.Config
	log   logrus.FieldLogger
	probe sizeprobe.Prober
	arch  archive.Archiver
	fs    fs.FS
	out   io.Writer // bucket summary destination
}

// New creates a runner. The config is assumed normalized and valid.
// Nil probe, archiver or filesystem select the configured defaults.
func New(cfg *config.Config, log logrus.FieldLogger, probe sizeprobe.Prober, arch archive.Archiver, filesystem fs.FS) *Runner {
	if probe == nil {
		if cfg.Probe.Mode == "walk" {
			probe = sizeprobe.WalkProber{}
		} else {
			probe = sizeprobe.NewCommandProber(cfg.Probe.Argv, cfg.Probe.Timeout)
		}
	}
	if arch == nil {
		arch = archive.FromConfig(cfg.Archive, log)
	}
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Runner{
		cfg:   cfg,
		log:   log,
		probe: probe,
		arch:  arch,
		fs:    filesystem,
		out:   os.Stdout,
	}
}

// SetSummaryWriter redirects the bucket summary, which otherwise goes
// to stdout.
func (r *Runner) SetSummaryWriter(w io.Writer) {
	r.out = w
}

// Run executes the full pass. Cancellation stops folder processing but
// the archive log of the folders already handled is still written.
func (r *Runner) Run(ctx context.Context) error {
	// a bad retention rule must surface before anything is archived
	ret, err := retention.New(r.cfg.Output.Retention, r.log)
	if err != nil {
		return err
	}

	stamp := report.Stamp(time.Now())
	recs, writer, err := r.measure(ctx, stamp, true)
	if err != nil {
		return err
	}

	outcomes := r.process(ctx, recs)
	cancelled := ctx.Err() != nil

	after := r.totals(recs)
	r.log.WithFields(logrus.Fields{
		"input_gb":  after.InputGB,
		"output_gb": after.OutputGB,
	}).Info("input vs output after run")

	if _, err := writer.WriteArchiveLog(stamp, outcomes); err != nil {
		return err
	}

	if cancelled {
		return ctx.Err()
	}
	if err := ret.Apply(ctx, r.cfg.Output.Path); err != nil {
		r.log.WithError(err).Warn("retention failed")
	}
	return nil
}

// Scan executes the measuring half only: reports, summary and totals,
// with nothing archived, deleted or pruned.
func (r *Runner) Scan(ctx context.Context) error {
	stamp := report.Stamp(time.Now())
	_, _, err := r.measure(ctx, stamp, false)
	return err
}

// measure scans the source root and persists the scan artifacts. Both
// run modes start here.
func (r *Runner) measure(ctx context.Context, stamp string, wantArchive bool) ([]scan.FolderRecord, *report.Writer, error) {
	if err := r.preflight(wantArchive); err != nil {
		return nil, nil, err
	}

	rng := bucket.Range(r.cfg.Buckets.Start, r.cfg.Buckets.End)
	r.log.WithFields(logrus.Fields{
		"source":  r.cfg.Source.Path,
		"out":     r.cfg.Output.Path,
		"buckets": string(rng[0]) + " .. " + string(rng[len(rng)-1]),
		"mode":    r.cfg.Archive.Mode,
	}).Info("starting run")

	recs, err := scan.New(r.probe, r.log).Scan(ctx, r.cfg.Source.Path, r.cfg.Output.Path)
	if err != nil {
		return nil, nil, err
	}
	if len(recs) == 0 {
		return nil, nil, fmt.Errorf("no folders found under %s", r.cfg.Source.Path)
	}
	r.log.WithField("folders", len(recs)).Info("scan complete")

	writer := report.NewWriter(r.cfg.Output.Path, r.log)
	if _, err := writer.WriteScanReports(stamp, recs); err != nil {
		return nil, nil, err
	}
	report.WriteSummary(r.out, recs)

	before := r.totals(recs)
	if _, err := writer.WriteTotals(stamp, before); err != nil {
		return nil, nil, err
	}
	r.log.WithFields(logrus.Fields{
		"input_gb":  before.InputGB,
		"output_gb": before.OutputGB,
	}).Info("input vs output before run")

	return recs, writer, nil
}

// process walks the configured bucket range in order, smallest folder
// first within each bucket, and collects one outcome per folder.
func (r *Runner) process(ctx context.Context, recs []scan.FolderRecord) []worker.Outcome {
	w := worker.New(r.cfg.Archive, r.cfg.Output.Path, r.log, r.arch, r.fs)

	var outcomes []worker.Outcome
	for _, b := range bucket.Range(r.cfg.Buckets.Start, r.cfg.Buckets.End) {
		var batch []scan.FolderRecord
		for _, rec := range recs {
			if rec.Status == scan.StatusOK && rec.Bucket == b {
				batch = append(batch, rec)
			}
		}
		if len(batch) == 0 {
			r.log.WithField("bucket", string(b)).Debug("bucket empty")
			continue
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].SizeGB < batch[j].SizeGB
		})

		var totalGB float64
		for _, rec := range batch {
			totalGB += rec.SizeGB
		}
		r.log.WithFields(logrus.Fields{
			"bucket":   string(b),
			"folders":  len(batch),
			"total_gb": math.Round(totalGB*100) / 100,
		}).Info("processing bucket")

		for _, rec := range batch {
			if ctx.Err() != nil {
				r.log.Warn("run cancelled, stopping folder processing")
				return outcomes
			}
			outcomes = append(outcomes, w.Process(ctx, rec))
		}
	}
	return outcomes
}
