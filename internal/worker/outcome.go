package worker

import "github.com/mlaska/coldpack/internal/bucket"

// Status is the terminal disposition of one folder.
type Status string

const (
	StatusMissing       Status = "MISSING"
	StatusSkipExists    Status = "SKIP_EXISTS"
	StatusSkipLocked    Status = "SKIP_LOCKED"
	StatusArchived      Status = "ARCHIVED"
	StatusArchiveFailed Status = "ARCHIVE_FAILED"
	StatusDeleted       Status = "DELETED"
)

// Outcome is one row of the archive log.
type Outcome struct {
	Bucket    bucket.Bucket
	Folder    string // source folder path
	Archive   string // destination container path
	SizeGB    float64
	SizeKnown bool
	Status    Status
	Note      string // diagnostic detail for failures and skips
}
