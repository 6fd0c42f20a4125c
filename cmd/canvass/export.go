package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kwheaton/canvass/internal/export"
	"github.com/kwheaton/canvass/internal/store"
)

var (
	exportRun    string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export records of a stored run",
	Long: `Export the records of a past run from the store without re-running OCR.

The run defaults to the most recent one; pass --run with a run id to pick
an older run.

Examples:
  canvass export > latest.csv
  canvass export --run 6d9fdd2e-... --format xlsx --out 1886.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		db, err := store.Open(cfg.Store.DSN, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		svc := export.NewService(db, logger)

		format := cfg.Export.Format
		if exportFormat != "" {
			format = exportFormat
		}

		switch strings.ToLower(format) {
		case "csv":
			w := os.Stdout
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			_, err := svc.ExportCSV(ctx, exportRun, w)
			return err
		case "xlsx":
			if exportOut == "" || exportOut == "-" {
				return fmt.Errorf("xlsx output needs a file path")
			}
			data, err := svc.ExportXLSX(ctx, exportRun)
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportOut, data, 0o644); err != nil {
				return fmt.Errorf("write xlsx: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("unknown export format %q", format)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRun, "run", "latest", "run id to export, or 'latest'")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format: csv or xlsx (default from config)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path ('-' or empty writes CSV to stdout)")
}
