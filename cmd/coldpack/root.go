package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mlaska/coldpack/internal/config"
	"github.com/mlaska/coldpack/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile         string
	flagSource      string
	flagOut         string
	flagStartBucket string
	flagEndBucket   string
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "coldpack",
	Short: "Archive cold folders into compressed containers",
	Long: `coldpack measures the direct subfolders of a source root, groups them
into size buckets, reports what it found and packs the selected
buckets into .tar.zst containers, one per folder.

Settings come from a YAML config file; flags override individual
values for one invocation.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "config.yaml", "configuration file")
	pf.StringVar(&flagSource, "source", "", "source root holding the folders to archive")
	pf.StringVar(&flagOut, "out", "", "directory for containers and reports (default <source>/archives)")
	pf.StringVar(&flagStartBucket, "start-bucket", "", "first size bucket to process")
	pf.StringVar(&flagEndBucket, "end-bucket", "", "last size bucket to process")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// buildConfig layers flag overrides over the config file over the
// defaults. An explicitly named config file must exist; the default
// name is optional.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(cfgFile); err == nil {
		loaded, lerr := config.Load(cfgFile)
		if lerr != nil {
			return nil, lerr
		}
		cfg = loaded
	} else if cmd.Flags().Changed("config") {
		return nil, fmt.Errorf("config file: %w", err)
	}

	fl := cmd.Flags()
	if fl.Changed("source") {
		cfg.Source.Path = flagSource
	}
	if fl.Changed("out") {
		cfg.Output.Path = flagOut
	}
	if fl.Changed("start-bucket") {
		cfg.Buckets.Start = flagStartBucket
	}
	if fl.Changed("end-bucket") {
		cfg.Buckets.End = flagEndBucket
	}
	if fl.Changed("mode") {
		cfg.Archive.Mode = flagMode
	}
	if fl.Changed("level") {
		cfg.Archive.Level = flagLevel
	}
	if fl.Changed("threads") {
		cfg.Archive.Threads = flagThreads
	}
	if fl.Changed("retries") {
		cfg.Archive.Retries = flagRetries
	}
	if fl.Changed("delete-after") {
		cfg.Archive.DeleteAfterArchive = flagDeleteAfter
	}
	if fl.Changed("skip-existing") {
		cfg.Archive.SkipExisting = flagSkipExisting
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logging.New(cfg.Logging)
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// signalContext cancels on SIGINT or SIGTERM so an interrupted run
// abandons its half-written container instead of publishing it.
func signalContext(log logrus.FieldLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Warn("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
