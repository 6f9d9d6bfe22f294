//go:build !windows

package sizeprobe

// DefaultArgv returns the stock du-based probe. The printf wrapper
// reshapes du's tab-separated total into the "Bytes : N" summary line
// the parser expects.
func DefaultArgv() []string {
	return []string{
		"sh", "-c",
		`printf 'Bytes : %s\n' "$(du -sb -- "$1" | cut -f1)"`,
		"sizeprobe", "{dir}",
	}
}
