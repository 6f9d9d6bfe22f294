package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mlaska/coldpack/internal/bucket"
	"github.com/mlaska/coldpack/internal/scan"
)

// writes the per-folder scan report as CSV, JSON and plain text,
// plus the bucket-grouped CSV used to eyeball what a run will pick
// up.

func (w *Writer) WriteScanReports(stamp string, recs []scan.FolderRecord) ([]string, error) {
	paths := []string{
		w.path(ScanPrefix, stamp, ".csv"),
		w.path(ScanPrefix, stamp, ".json"),
		w.path(ScanPrefix, stamp, ".txt"),
		w.path(GroupedPrefix, stamp, ".csv"),
	}

	if err := w.writeScanCSV(paths[0], recs); err != nil {
		return nil, err
	}
	if err := w.writeScanJSON(paths[1], recs); err != nil {
		return nil, err
	}
	if err := w.writeScanText(paths[2], recs); err != nil {
		return nil, err
	}
	if err := w.writeGroupedCSV(paths[3], recs); err != nil {
		return nil, err
	}

	for _, p := range paths {
		w.log.WithField("path", p).Info("report written")
	}
	return paths, nil
}

func (w *Writer) writeScanCSV(path string, recs []scan.FolderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating scan csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"folder", "name", "size_gb", "bucket", "status"}); err != nil {
		return err
	}
	for _, r := range recs {
		size := ""
		if r.SizeKnown {
			size = gb2(r.SizeGB)
		}
		if err := cw.Write([]string{r.Path, r.Name, size, string(r.Bucket), r.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeScanJSON(path string, recs []scan.FolderRecord) error {
	type row struct {
		Folder string   `json:"folder"`
		Name   string   `json:"name"`
		SizeGB *float64 `json:"size_gb"`
		Bucket string   `json:"bucket"`
		Status string   `json:"status"`
	}

	rows := make([]row, 0, len(recs))
	for _, r := range recs {
		out := row{Folder: r.Path, Name: r.Name, Bucket: string(r.Bucket), Status: r.Status}
		if r.SizeKnown {
			gb := r.SizeGB
			out.SizeGB = &gb
		}
		rows = append(rows, out)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scan json: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// the txt variant is the grep-friendly one, tab-separated, no header
func (w *Writer) writeScanText(path string, recs []scan.FolderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating scan txt: %w", err)
	}
	defer f.Close()

	for _, r := range recs {
		size := ""
		if r.SizeKnown {
			size = gb2(r.SizeGB)
		}
		fmt.Fprintf(f, "%s\t%s\t%s\t%s\n", r.Status, r.Bucket, size, r.Path)
	}
	return nil
}

// grouped rows come out in bucket order, largest folder first within
// each bucket
func (w *Writer) writeGroupedCSV(path string, recs []scan.FolderRecord) error {
	sorted := make([]scan.FolderRecord, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := bucket.Index(sorted[i].Bucket), bucket.Index(sorted[j].Bucket)
		if bi != bj {
			return bi < bj
		}
		return sorted[i].SizeGB > sorted[j].SizeGB
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grouped csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"bucket", "size_gb", "name", "folder", "status"}); err != nil {
		return err
	}
	for _, r := range sorted {
		size := ""
		if r.SizeKnown {
			size = gb2(r.SizeGB)
		}
		if err := cw.Write([]string{string(r.Bucket), size, r.Name, r.Path, r.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
