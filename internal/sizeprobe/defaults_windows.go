//go:build windows

package sizeprobe

import "os"

// DefaultArgv returns the stock robocopy list-only probe. /L lists
// without copying, so the destination argument is required but never
// written to.
func DefaultArgv() []string {
	return []string{
		"robocopy", "{dir}", os.Getenv("TEMP"),
		"/L", "/S", "/BYTES", "/NP", "/NFL", "/NDL", "/NJH",
	}
}
