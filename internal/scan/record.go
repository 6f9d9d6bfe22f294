package scan

import "github.com/mlaska/coldpack/internal/bucket"

// statuses recorded per scanned folder
const (
	StatusOK         = "OK"
	StatusSizeFailed = "SIZE_FAILED"
)

// FolderRecord is one direct subfolder of the source root after
// measurement and classification.
type FolderRecord struct {
	Path      string        // absolute folder path
	Name      string        // base name, also names the archive
	SizeBytes int64         // raw measurement, zero when unknown
	SizeGB    float64       // rounded to two decimals, zero when unknown
	SizeKnown bool          // false when the probe failed
	Bucket    bucket.Bucket // Unknown when the probe failed
	Status    string
}
