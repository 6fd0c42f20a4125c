package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kwheaton/canvass/internal/entity"
	"github.com/kwheaton/canvass/internal/export"
	"github.com/kwheaton/canvass/internal/ingest"
)

var (
	processOut    string
	processFormat string
	processNoDB   bool
)

var processCmd = &cobra.Command{
	Use:   "process [paths...]",
	Short: "OCR and parse page scans into records",
	Long: `Process page scans (images or PDFs) through OCR and the entry parser.

Paths may be files or directories; directories are walked recursively and
pages are processed in natural filename order, so ditto surnames carry
from one page to the next. Results are written to the export target and,
unless --no-db is given, recorded in the configured store.

Examples:
  canvass process scans/
  canvass process directory-1886.pdf --out 1886.csv
  canvass process scans/ --format xlsx --out records.xlsx
  canvass process scans/ --format table --no-db`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		paths, err := ingest.Discover(args, cfg.Ingest.SkipHidden)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no scan files under %s", strings.Join(args, ", "))
		}

		pagePaths, cleanup, err := expandInputs(ctx, cfg, logger, paths)
		if err != nil {
			return err
		}
		defer cleanup()

		runner, closeStore, err := buildRunner(ctx, cfg, logger, !processNoDB)
		if err != nil {
			return err
		}
		defer closeStore()

		run, outcomes, err := runner.Run(ctx, args[0], pagePaths)
		if err != nil {
			return err
		}

		var records []*entity.Record
		for i := range outcomes {
			for j := range outcomes[i].Records {
				records = append(records, &outcomes[i].Records[j])
			}
		}

		format := cfg.Export.Format
		if processFormat != "" {
			format = processFormat
		}
		out := cfg.Export.Path
		if processOut != "" {
			out = processOut
		}
		if err := writeRecords(records, format, out, logger); err != nil {
			return err
		}

		if run.Status != "COMPLETED" {
			logger.Warn("process.finished_with_failures",
				"run_id", run.ID, "status", run.Status, "failed_pages", run.FailedPages)
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&processOut, "out", "o", "", "output path ('-' for stdout; default from config)")
	processCmd.Flags().StringVarP(&processFormat, "format", "f", "", "output format: csv, xlsx or table (default from config)")
	processCmd.Flags().BoolVar(&processNoDB, "no-db", false, "skip the record store")
}

// writeRecords sends records to the chosen target. The table format and
// '-' paths write to stdout.
func writeRecords(records []*entity.Record, format, path string, logger *slog.Logger) error {
	switch strings.ToLower(format) {
	case "table":
		return export.WriteTable(os.Stdout, records)
	case "csv":
		if path == "" || path == "-" {
			return export.WriteCSV(os.Stdout, records)
		}
		if err := export.WriteCSVFile(path, records); err != nil {
			return err
		}
	case "xlsx":
		if path == "" || path == "-" {
			return fmt.Errorf("xlsx output needs a file path")
		}
		data, err := export.BuildXLSX(records)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	logger.Info("export.file.ok", "format", format, "path", path, "rows", len(records))
	return nil
}
