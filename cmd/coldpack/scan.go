package main

import (
	"github.com/spf13/cobra"

	"github.com/mlaska/coldpack/internal/run"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Measure and report only, archive nothing",
	Long: `scan runs the measuring half of a run: it sizes every direct
subfolder, writes the scan reports and the input-vs-output totals and
prints the bucket summary. No folder is archived or deleted, so it is
the way to preview what run would pick up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		ctx, stop := signalContext(log)
		defer stop()
		return run.New(cfg, log, nil, nil, nil).Scan(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
