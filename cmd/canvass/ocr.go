package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "OCR a single page scan and print the text",
	Long: `Run the OCR stage alone on one image and print the recognized text.

All configured preprocessing variants are tried and the best one wins;
the chosen variant and its confidence are logged. Useful for tuning
preprocessing and tesseract settings before a full run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		extractor := newExtractor(cfg, logger)
		res, err := extractor.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(res.Text)
		logger.Info("ocr.done",
			"variant", res.Variant,
			"method", res.Method,
			"confidence", res.Confidence,
			"warnings", len(res.Warnings),
		)
		return nil
	},
}
