// Package bucket classifies folder sizes into a fixed, ordered set of
// capacity bands. The same ordering drives report grouping and the
// bucket range selected for archiving, so the two can never disagree.
package bucket

import "math"

// Bucket is one capacity band. The zero value is not a valid bucket.
type Bucket string

const (
	LT1GB      Bucket = "<1 GB"
	GB1To10    Bucket = "1-10 GB"
	GB10To50   Bucket = "10-50 GB"
	GB50To200  Bucket = "50-200 GB"
	GB200To500 Bucket = "200-500 GB"
	GB500To1TB Bucket = "500 GB-1 TB"
	TB1To10    Bucket = "1-10 TB"
	TB10Plus   Bucket = "10 TB+"
	// Unknown is reserved for folders whose size could not be measured.
	// It sorts after every measurable band.
	Unknown Bucket = "Unknown"
)

// order is the canonical total order, smallest band first.
var order = []Bucket{
	LT1GB,
	GB1To10,
	GB10To50,
	GB50To200,
	GB200To500,
	GB500To1TB,
	TB1To10,
	TB10Plus,
	Unknown,
}

// Order returns the canonical bucket order, smallest first.
// Callers must not modify the returned slice.
func Order() []Bucket {
	return order
}

// Index returns the position of b in the canonical order, or -1 when b
// is not a known bucket label.
func Index(b Bucket) int {
	for i, o := range order {
		if o == b {
			return i
		}
	}
	return -1
}

// FromName maps a configured label back to its bucket.
func FromName(name string) (Bucket, bool) {
	b := Bucket(name)
	if Index(b) < 0 {
		return "", false
	}
	return b, true
}

// GBFromBytes converts a byte count to gigabytes rounded to two
// decimals. Classification happens on the rounded value, so a folder
// lands in the same bucket the reports show for it.
func GBFromBytes(n int64) float64 {
	return math.Round(float64(n)/(1<<30)*100) / 100
}

// FromGB classifies an already-rounded gigabyte size.
func FromGB(gb float64) Bucket {
	switch {
	case gb < 1:
		return LT1GB
	case gb < 10:
		return GB1To10
	case gb < 50:
		return GB10To50
	case gb < 200:
		return GB50To200
	case gb < 500:
		return GB200To500
	case gb < 1000:
		return GB500To1TB
	case gb < 10000:
		return TB1To10
	default:
		return TB10Plus
	}
}

// FromBytes classifies a raw byte count.
func FromBytes(n int64) Bucket {
	return FromGB(GBFromBytes(n))
}
