package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/DataDog/zstd"
)

// in-process stages backed by archive/tar and the zstd codec; used
// where the external utilities are not installed.

// NativeSource walks the folder and emits its contents as a tar
// stream. Entry names are relative to the folder root, matching what
// the external serializer produces.
type NativeSource struct{}

func (NativeSource) Stream(ctx context.Context, dir string, w io.Writer) error {
	tw := tar.NewWriter(w)

	walkErr := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		f.Close()
		return err
	})
	if walkErr != nil {
		return &StageError{Stage: "serialize", Cmd: "tar", Err: walkErr}
	}

	if err := tw.Close(); err != nil {
		return &StageError{Stage: "serialize", Cmd: "tar", Err: err}
	}
	return nil
}

// NativeSink compresses the stream with the zstd codec and writes the
// container file itself.
type NativeSink struct {
	Level   int
	Threads int
}

func (s NativeSink) Consume(ctx context.Context, r io.Reader, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &StageError{Stage: "compress", Cmd: "zstd", Err: err}
	}

	// the codec treats 0 workers as single-threaded; the configured
	// knob follows zstd -T semantics where 0 means all cores
	workers := s.Threads
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	zw := zstd.NewWriterParams(f, &zstd.WriterParams{
		CompressionLevel: s.Level,
		NbWorkers:        workers,
	})

	_, copyErr := io.Copy(zw, r)
	closeErr := zw.Close()
	fileErr := f.Close()

	if copyErr != nil {
		var stage *StageError
		if errors.As(copyErr, &stage) {
			// a serializer failure fed through the pipe; keep its identity
			return copyErr
		}
		return &StageError{Stage: "compress", Cmd: "zstd", Err: copyErr}
	}
	if closeErr != nil {
		return &StageError{Stage: "compress", Cmd: "zstd", Err: closeErr}
	}
	if fileErr != nil {
		return &StageError{Stage: "compress", Cmd: "zstd", Err: fileErr}
	}
	return nil
}

// NativeChecker decompresses the container and walks every tar entry,
// which catches both codec corruption and a truncated stream.
type NativeChecker struct{}

func (NativeChecker) Check(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &StageError{Stage: "verify", Cmd: "zstd", Err: err}
	}
	defer f.Close()

	zr := zstd.NewReader(f)
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &StageError{Stage: "verify", Cmd: "tar", Err: err}
		}
		if _, err := io.Copy(io.Discard, tr); err != nil {
			return &StageError{Stage: "verify", Cmd: "tar", Err: err}
		}
	}
}
