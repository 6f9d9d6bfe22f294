package archive

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/config"
)

// Archiver runs the full folder-to-container pipeline and validates
// the result.
type Archiver interface {
	Archive(ctx context.Context, dir, dest string) error
	Verify(ctx context.Context, path string) error
}

// PipelineArchiver wires a source, a sink and a checker together.
type PipelineArchiver struct {
	pipeline Pipeline
	check    Checker
	tools    []string
	log      logrus.FieldLogger
}

// FromConfig assembles the archiver variant the config names: exec
// shells out to tar and zstd, native stays in-process.
func FromConfig(cfg config.ArchiveConfig, log logrus.FieldLogger) *PipelineArchiver {
	if cfg.Mode == "native" {
		return &PipelineArchiver{
			pipeline: Pipeline{
				Source: NativeSource{},
				Sink:   NativeSink{Level: cfg.Level, Threads: cfg.Threads},
			},
			check: NativeChecker{},
			log:   log,
		}
	}

	serialize := cfg.SerializeArgv
	if len(serialize) == 0 {
		serialize = DefaultSerializeArgv()
	}
	compress := cfg.CompressArgv
	if len(compress) == 0 {
		compress = DefaultCompressArgv()
	}
	verify := cfg.VerifyArgv
	if len(verify) == 0 {
		verify = DefaultVerifyArgv()
	}

	return &PipelineArchiver{
		pipeline: Pipeline{
			Source: ExecSource{Argv: serialize},
			Sink:   ExecSink{Argv: compress, Level: cfg.Level, Threads: cfg.Threads},
		},
		check: ExecChecker{Argv: verify},
		tools: []string{serialize[0], compress[0], verify[0]},
		log:   log,
	}
}

func (a *PipelineArchiver) Archive(ctx context.Context, dir, dest string) error {
	a.log.WithFields(logrus.Fields{
		"folder": filepath.Base(dir),
		"dest":   filepath.Base(dest),
	}).Debug("running archive pipeline")
	return a.pipeline.Run(ctx, dir, dest)
}

func (a *PipelineArchiver) Verify(ctx context.Context, path string) error {
	a.log.WithField("archive", filepath.Base(path)).Debug("verifying container")
	return a.check.Check(ctx, path)
}

// Commands lists the external programs this archiver shells out to,
// for preflight checks. Native mode needs none.
func (a *PipelineArchiver) Commands() []string {
	return a.tools
}
