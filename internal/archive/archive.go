// Package archive turns a folder tree into a compressed tar container
// through a two-stage pipeline: a serializer streams the tree as tar
// while a compressor consumes the stream and writes the container.
// Both stages run concurrently so neither ever buffers the whole
// payload.
package archive

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Ext is the container suffix for published archives.
const Ext = ".tar.zst"

// how much trailing diagnostic output a stage failure carries
const stderrTailLines = 5

// TempPath derives the in-progress path for dest: same directory, a
// unique infix, same extension. Publication renames it over dest, so
// readers of the destination directory never observe a half-written
// archive under its final name.
func TempPath(dest string) string {
	dir, base := filepath.Split(dest)
	name := strings.TrimSuffix(base, Ext)
	u := uuid.New()
	return filepath.Join(dir, name+"._tmp_"+hex.EncodeToString(u[:])+Ext)
}

// StageError reports which pipeline stage failed and why.
type StageError struct {
	Stage  string // "serialize", "compress" or "verify"
	Cmd    string // failing command or codec
	Code   int    // exit code when an external process failed
	Detail string // trailing diagnostic output, single line
	Err    error
}

func (e *StageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s stage %s failed", e.Stage, e.Cmd)
	switch {
	case e.Code > 0:
		fmt.Fprintf(&b, " (exit %d)", e.Code)
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *StageError) Unwrap() error { return e.Err }

// expandArgv substitutes placeholders inside each template element.
func expandArgv(argv []string, subs map[string]string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		for k, v := range subs {
			a = strings.ReplaceAll(a, k, v)
		}
		out[i] = a
	}
	return out
}

// tailLines flattens the last few non-empty lines of diagnostic
// output into a single line.
func tailLines(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " | ")
}
