// Package report persists run artifacts: the scan reports in three
// shapes, the bucket-grouped variant, the volume totals and the
// archive log. File names carry the run stamp so consecutive runs
// never clobber each other.
package report

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// file name prefixes of the artifact set
const (
	ScanPrefix       = "scan_"
	GroupedPrefix    = "grouped_scan_"
	TotalsPrefix     = "input_vs_output_"
	ArchiveLogPrefix = "archive_log_"
)

// StampLayout formats the run timestamp embedded in artifact names.
const StampLayout = "20060102_150405"

// Stamp renders t in the artifact-name layout.
func Stamp(t time.Time) string {
	return t.Format(StampLayout)
}

// Writer persists run artifacts into one directory.
type Writer struct {
	dir string
	log logrus.FieldLogger
}

func NewWriter(dir string, log logrus.FieldLogger) *Writer {
	return &Writer{dir: dir, log: log}
}

func (w *Writer) path(prefix, stamp, ext string) string {
	return filepath.Join(w.dir, prefix+stamp+ext)
}

// gb2 renders a gigabyte figure the way every artifact shows sizes.
func gb2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func ratio3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
