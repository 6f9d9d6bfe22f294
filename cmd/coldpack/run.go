package main

import (
	"github.com/spf13/cobra"

	"github.com/mlaska/coldpack/internal/run"
)

var (
	flagMode         string
	flagLevel        int
	flagThreads      int
	flagRetries      int
	flagDeleteAfter  bool
	flagSkipExisting bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan the source root and archive the configured bucket range",
	Long: `run measures every direct subfolder, writes the scan reports, then
archives the folders of the configured bucket range in bucket order,
smallest folder first. Interrupting the run stops it after the folder
in flight; the archive log still records what was done.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		ctx, stop := signalContext(log)
		defer stop()
		return run.New(cfg, log, nil, nil, nil).Run(ctx)
	},
}

func init() {
	fl := runCmd.Flags()
	fl.StringVar(&flagMode, "mode", "exec", "archive mode: exec or native")
	fl.IntVar(&flagLevel, "level", 12, "zstd compression level")
	fl.IntVar(&flagThreads, "threads", 8, "zstd worker threads")
	fl.IntVar(&flagRetries, "retries", 3, "attempts per folder before giving up")
	fl.BoolVar(&flagDeleteAfter, "delete-after", false, "delete each source folder once its archive is verified")
	fl.BoolVar(&flagSkipExisting, "skip-existing", true, "leave folders alone when their archive already exists")

	rootCmd.AddCommand(runCmd)
}
