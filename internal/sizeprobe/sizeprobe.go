// Package sizeprobe measures the total size of a folder tree.
// The default prober shells out to a listing utility and parses its
// byte summary line; a pure-Go walker is available as a fallback.
package sizeprobe

import (
	"bufio"
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Prober measures folder sizes. Implementations do not cache: every
// call re-measures, so repeated calls observe filesystem changes.
type Prober interface {
	Measure(ctx context.Context, dir string) (int64, error)
}

// ErrNoSummary is returned when probe output carries no byte summary.
var ErrNoSummary = errors.New("no byte summary line in probe output")

// matches the "Bytes : 1,234,567" summary shape, thousands separators
// optional
var summaryPattern = regexp.MustCompile(`(?i)bytes\s*:\s*([\d,]+)`)

// ParseSummaryBytes extracts the byte total from utility output. The
// first line starting with "bytes" (case-insensitive, after trimming)
// that carries a parsable number wins; lines that merely start with
// the word are skipped.
func ParseSummaryBytes(output string) (int64, error) {
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(strings.ToLower(line), "bytes") {
			continue
		}
		m := summaryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			continue
		}
		return n, nil
	}
	return 0, ErrNoSummary
}
