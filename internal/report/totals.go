package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Totals compares the measured input volume against what already sits
// in the output directory.
type Totals struct {
	Source   string
	Out      string
	InputGB  float64
	OutputGB float64
}

// Ratio is output over input. Zero input yields zero, not a division
// blow-up, and the CSV leaves the cell empty in that case.
func (t Totals) Ratio() float64 {
	if t.InputGB == 0 {
		return 0
	}
	return t.OutputGB / t.InputGB
}

// SavedGB is how much smaller the archives are than their sources.
func (t Totals) SavedGB() float64 {
	return t.InputGB - t.OutputGB
}

// WriteTotals persists the input-vs-output comparison as a single-row
// CSV next to the scan reports.
func (w *Writer) WriteTotals(stamp string, t Totals) (string, error) {
	path := w.path(TotalsPrefix, stamp, ".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating totals csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"source", "out", "total_input_gb", "total_output_gb", "compression_ratio", "saved_gb"}); err != nil {
		return "", err
	}

	ratio, saved := "", ""
	if t.InputGB != 0 {
		ratio = ratio3(t.Ratio())
		saved = gb2(t.SavedGB())
	}
	if err := cw.Write([]string{t.Source, t.Out, gb2(t.InputGB), gb2(t.OutputGB), ratio, saved}); err != nil {
		return "", err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	w.log.WithField("path", path).Info("report written")
	return path, nil
}
