package main

import (
	"github.com/spf13/cobra"

	"github.com/kwheaton/canvass/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Watch directories and process new scans as they arrive",
	Long: `Watch directories recursively and run the pipeline on every scan that
appears, one run per file. Writes from scanners are debounced so a page
is only picked up once its file has settled. Records go to the store;
use 'canvass export' to pull them out.

The command runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		runner, closeStore, err := buildRunner(ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		defer closeStore()

		events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: cfg.Watch.InitialScan,
			Debounce:    cfg.Watch.Debounce,
		}, logger)
		if err != nil {
			return err
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case werr, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				logger.Error("watch.error", "error", werr)
			case path, ok := <-events:
				if !ok {
					return nil
				}
				pagePaths, cleanup, err := expandInputs(ctx, cfg, logger, []string{path})
				if err != nil {
					logger.Error("watch.expand_failed", "path", path, "error", err)
					continue
				}
				if _, _, err := runner.Run(ctx, path, pagePaths); err != nil {
					logger.Error("watch.run_failed", "path", path, "error", err)
				}
				cleanup()
			}
		}
	},
}
