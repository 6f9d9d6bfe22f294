package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mlaska/coldpack/internal/worker"
)

// WriteArchiveLog persists the per-folder processing outcomes. It is
// written even when a run is cut short, so the log always tells which
// folders were touched.
func (w *Writer) WriteArchiveLog(stamp string, outcomes []worker.Outcome) (string, error) {
	path := w.path(ArchiveLogPrefix, stamp, ".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"bucket", "folder", "archive", "size_gb", "status", "note"}); err != nil {
		return "", err
	}
	for _, o := range outcomes {
		size := ""
		if o.SizeKnown {
			size = gb2(o.SizeGB)
		}
		if err := cw.Write([]string{string(o.Bucket), o.Folder, o.Archive, size, string(o.Status), o.Note}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	w.log.WithField("path", path).Info("archive log written")
	return path, nil
}
