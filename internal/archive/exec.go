package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// external-process stages; the defaults match the classic tar | zstd
// pairing.

// DefaultSerializeArgv streams {dir} as an uncompressed tar to stdout.
func DefaultSerializeArgv() []string {
	return []string{"tar", "-cf", "-", "-C", "{dir}", "."}
}

// DefaultCompressArgv reads tar on stdin and writes the container to
// {out}.
func DefaultCompressArgv() []string {
	return []string{"zstd", "-{level}", "-T{threads}", "-q", "-o", "{out}"}
}

// DefaultVerifyArgv tests container integrity without unpacking it.
func DefaultVerifyArgv() []string {
	return []string{"zstd", "-t", "-q", "{archive}"}
}

// ExecSource serializes a folder by running an external command with
// its stdout wired into the pipeline.
type ExecSource struct {
	Argv []string // {dir} is substituted per call
}

func (s ExecSource) Stream(ctx context.Context, dir string, w io.Writer) error {
	argv := expandArgv(s.Argv, map[string]string{"{dir}": dir})

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &StageError{Stage: "serialize", Cmd: argv[0], Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &StageError{Stage: "serialize", Cmd: argv[0], Err: err}
	}

	_, copyErr := io.Copy(w, stdout)
	if copyErr != nil {
		// keep draining so the serializer never blocks on a dead sink
		_, _ = io.Copy(io.Discard, stdout)
	}

	if waitErr := cmd.Wait(); waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &StageError{
				Stage: "serialize", Cmd: argv[0],
				Code: exitErr.ExitCode(), Detail: tailLines(stderr.Bytes()), Err: waitErr,
			}
		}
		return &StageError{Stage: "serialize", Cmd: argv[0], Detail: tailLines(stderr.Bytes()), Err: waitErr}
	}

	if copyErr != nil {
		// the serializer itself was fine; the pipe went away under it
		return fmt.Errorf("serialize %s: streaming: %w", argv[0], copyErr)
	}
	return nil
}

// ExecSink compresses by running an external command with the
// pipeline wired into its stdin.
type ExecSink struct {
	Argv    []string // {out}, {level} and {threads} are substituted
	Level   int
	Threads int
}

func (s ExecSink) Consume(ctx context.Context, r io.Reader, path string) error {
	argv := expandArgv(s.Argv, map[string]string{
		"{out}":     path,
		"{level}":   strconv.Itoa(s.Level),
		"{threads}": strconv.Itoa(s.Threads),
	})

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &StageError{
				Stage: "compress", Cmd: argv[0],
				Code: exitErr.ExitCode(), Detail: tailLines(stderr.Bytes()), Err: err,
			}
		}
		var stage *StageError
		if errors.As(err, &stage) {
			// a serializer failure fed through stdin; keep its identity
			return err
		}
		return &StageError{Stage: "compress", Cmd: argv[0], Detail: tailLines(stderr.Bytes()), Err: err}
	}
	return nil
}

// ExecChecker validates a container by running an external command.
type ExecChecker struct {
	Argv []string // {archive} is substituted per call
}

func (c ExecChecker) Check(ctx context.Context, path string) error {
	argv := expandArgv(c.Argv, map[string]string{"{archive}": path})

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &StageError{
				Stage: "verify", Cmd: argv[0],
				Code: exitErr.ExitCode(), Detail: tailLines(stderr.Bytes()), Err: err,
			}
		}
		return &StageError{Stage: "verify", Cmd: argv[0], Detail: tailLines(stderr.Bytes()), Err: err}
	}
	return nil
}
