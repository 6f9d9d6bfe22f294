package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mlaska/coldpack/internal/bucket"
	"github.com/mlaska/coldpack/internal/scan"
)

// WriteSummary prints the folder count and combined size per bucket,
// in bucket order, skipping empty buckets.
func WriteSummary(w io.Writer, recs []scan.FolderRecord) {
	counts := make(map[bucket.Bucket]int)
	sizes := make(map[bucket.Bucket]float64)
	for _, r := range recs {
		counts[r.Bucket]++
		sizes[r.Bucket] += r.SizeGB
	}

	fmt.Fprintln(w, "\nBucket Summary:")
	fmt.Fprintf(w, "%-14s %8s %12s\n", "Bucket", "Folders", "TotalGB")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, b := range bucket.Order() {
		if counts[b] == 0 {
			continue
		}
		fmt.Fprintf(w, "%-14s %8d %12.2f\n", b, counts[b], sizes[b])
	}
}
