package bucket

// selects the contiguous run of buckets to archive from configured
// start/end labels, tolerating typos and reversed bounds.

const (
	// fallbacks applied when a configured label is not a known bucket
	defaultStart = LT1GB
	defaultEnd   = GB50To200
)

// Range returns the buckets from start to end inclusive, in canonical
// order. Unknown labels fall back to defaults, and reversed bounds are
// swapped rather than rejected so a mistyped config still archives
// something sensible.
func Range(start, end string) []Bucket {
	sb, ok := FromName(start)
	if !ok {
		sb = defaultStart
	}
	eb, ok := FromName(end)
	if !ok {
		eb = defaultEnd
	}

	si, ei := Index(sb), Index(eb)
	if si > ei {
		si, ei = ei, si
	}

	return order[si : ei+1]
}
