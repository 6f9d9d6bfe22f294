package archive

import (
	"context"
	"errors"
	"io"
)

// StreamSource produces the serialized form of a folder tree.
type StreamSource interface {
	Stream(ctx context.Context, dir string, w io.Writer) error
}

// StreamSink consumes a serialized stream and writes the compressed
// container to path.
type StreamSink interface {
	Consume(ctx context.Context, r io.Reader, path string) error
}

// Checker validates a finished container.
type Checker interface {
	Check(ctx context.Context, path string) error
}

// Pipeline couples a source and a sink through an in-process pipe.
// The source's write end is half-closed the moment it finishes, so
// the sink observes end-of-stream immediately; a sink that quits
// early unblocks the source the same way instead of wedging it.
type Pipeline struct {
	Source StreamSource
	Sink   StreamSink
}

func (p Pipeline) Run(ctx context.Context, dir, dest string) error {
	pr, pw := io.Pipe()

	srcc := make(chan error, 1)
	go func() {
		err := p.Source.Stream(ctx, dir, pw)
		pw.CloseWithError(err)
		srcc <- err
	}()

	sinkErr := p.Sink.Consume(ctx, pr, dest)
	pr.CloseWithError(sinkErr)
	srcErr := <-srcc

	return pickStageError(srcErr, sinkErr)
}

// pickStageError decides which stage to blame when both report. The
// sink side wins: a serializer failure travels through the pipe and
// keeps its own stage identity, while a dead sink usually takes the
// serializer down with a collateral pipe error that must not mask it.
func pickStageError(srcErr, sinkErr error) error {
	var stage *StageError
	if errors.As(sinkErr, &stage) {
		return sinkErr
	}
	if errors.As(srcErr, &stage) {
		return srcErr
	}
	if sinkErr != nil {
		return sinkErr
	}
	return srcErr
}
