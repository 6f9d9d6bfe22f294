// Package retention prunes old report sets from the output directory.
// A report set is every artifact one run wrote, identified by the
// stamp shared across its file names. Archives themselves are never
// touched.
package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/config"
	"github.com/mlaska/coldpack/internal/report"
)

// stampPattern pulls the run stamp out of an artifact file name.
var stampPattern = regexp.MustCompile(`_(\d{8}_\d{6})\.(?:csv|json|txt)$`)

var artifactPrefixes = []string{
	report.ScanPrefix,
	report.GroupedPrefix,
	report.TotalsPrefix,
	report.ArchiveLogPrefix,
}

type rule struct {
	name     string
	count    int
	schedule cron.Schedule
}

type Engine struct {
	lastCount int
	rules     []rule
	log       logrus.FieldLogger
}

// New builds an engine from the retention config. Cron expressions are
// parsed up front so a bad rule fails the run before anything happens.
func New(cfg config.RetentionConfig, log logrus.FieldLogger) (*Engine, error) {
	e := &Engine{lastCount: cfg.LastCount, log: log}
	for _, r := range cfg.Rules {
		sched, err := cron.ParseStandard(r.Cron)
		if err != nil {
			return nil, fmt.Errorf("retention rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, rule{name: r.Name, count: r.Count, schedule: sched})
	}
	return e, nil
}

// Enabled reports whether any pruning is configured at all.
func (e *Engine) Enabled() bool {
	return e.lastCount > 0 || len(e.rules) > 0
}

type reportSet struct {
	stamp string
	ts    time.Time
	files []string
}

// Apply removes every report set not claimed by the keep-last count or
// by a cron rule. With nothing configured it is a no-op.
func (e *Engine) Apply(ctx context.Context, dir string) error {
	if !e.Enabled() {
		return nil
	}

	sets, err := scanReportSets(dir)
	if err != nil {
		return err
	}
	// newest first
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].ts.After(sets[j].ts)
	})

	kept := make(map[string]bool)
	for i := 0; i < e.lastCount && i < len(sets); i++ {
		kept[sets[i].stamp] = true
	}
	for _, r := range e.rules {
		e.applyRule(r, sets, kept)
	}

	removed := 0
	for _, s := range sets {
		if kept[s.stamp] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, f := range s.files {
			if err := os.Remove(f); err != nil {
				e.log.WithField("path", f).WithError(err).Warn("retention: removing artifact failed")
				continue
			}
			removed++
		}
		e.log.WithField("stamp", s.stamp).Debug("retention: report set removed")
	}
	e.log.WithFields(logrus.Fields{
		"sets":    len(sets),
		"kept":    len(kept),
		"removed": removed,
	}).Info("retention applied")
	return nil
}

// applyRule marks the newest set of each rule period as kept, for the
// newest count periods. A period is identified by the next firing of
// the rule's cron after the set's stamp, so two sets between the same
// firings compete for one slot.
func (e *Engine) applyRule(r rule, sets []reportSet, kept map[string]bool) {
	periods := make(map[time.Time]*reportSet)
	for i := range sets {
		s := &sets[i]
		key := r.schedule.Next(s.ts)
		cur, ok := periods[key]
		if !ok || s.ts.After(cur.ts) {
			periods[key] = s
		}
	}

	keys := make([]time.Time, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].After(keys[j])
	})
	if len(keys) > r.count {
		keys = keys[:r.count]
	}
	for _, k := range keys {
		kept[periods[k].stamp] = true
	}
}

// scanReportSets groups the artifact files in dir by their run stamp.
func scanReportSets(dir string) ([]reportSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	byStamp := make(map[string]*reportSet)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !isArtifact(name) {
			continue
		}
		m := stampPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		ts, err := time.Parse(report.StampLayout, m[1])
		if err != nil {
			continue
		}
		s, ok := byStamp[m[1]]
		if !ok {
			s = &reportSet{stamp: m[1], ts: ts}
			byStamp[m[1]] = s
		}
		s.files = append(s.files, filepath.Join(dir, name))
	}

	sets := make([]reportSet, 0, len(byStamp))
	for _, s := range byStamp {
		sets = append(sets, *s)
	}
	return sets, nil
}

func isArtifact(name string) bool {
	for _, p := range artifactPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
