package run

import (
	"math"
	"path/filepath"

	"github.com/mlaska/coldpack/internal/archive"
	"github.com/mlaska/coldpack/internal/bucket"
	"github.com/mlaska/coldpack/internal/report"
	"github.com/mlaska/coldpack/internal/scan"
)

// totals sums the measured input against every container currently in
// the output directory. Temp files from failed attempts match the
// container pattern and count as output until someone cleans them up.
func (r *Runner) totals(recs []scan.FolderRecord) report.Totals {
	var in float64
	for _, rec := range recs {
		in += rec.SizeGB
	}

	var outBytes int64
	matches, err := filepath.Glob(filepath.Join(r.cfg.Output.Path, "*"+archive.Ext))
	if err == nil {
		for _, m := range matches {
			fi, err := r.fs.Stat(m)
			if err != nil {
				continue
			}
			outBytes += fi.Size
		}
	}

	return report.Totals{
		Source:   r.cfg.Source.Path,
		Out:      r.cfg.Output.Path,
		InputGB:  math.Round(in*100) / 100,
		OutputGB: bucket.GBFromBytes(outBytes),
	}
}
