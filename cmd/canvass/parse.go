package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwheaton/canvass/internal/entity"
	"github.com/kwheaton/canvass/internal/page"
	"github.com/kwheaton/canvass/internal/parse"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse directory text lines without OCR",
	Long: `Parse already-transcribed directory text into records.

Reads page text from the file argument or stdin, segments it into entries
(banner lines and page furniture are dropped, wrapped lines are rejoined)
and runs the entry parser with a fresh ditto state. Useful for checking
lexicon changes against known text without re-running OCR.

Examples:
  canvass parse page.txt
  echo 'Smith John carp 123 Main St' | canvass parse
  canvass parse page.txt --format csv > page.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		lex, err := loadLexicon(cfg)
		if err != nil {
			return err
		}
		parser := newParser(cfg, lex, logger)

		var (
			st      parse.State
			records []*entity.Record
			skipped int
		)
		for _, entry := range page.SegmentEntries(string(data), lex) {
			rec, _, ok := parser.ParseLine(parse.RawLine{Text: entry.Text, LineNo: entry.LineNo}, &st)
			if !ok {
				skipped++
				continue
			}
			records = append(records, &rec)
		}

		if err := writeRecords(records, parseFormat, "-", logger); err != nil {
			return err
		}
		logger.Info("parse.done", "records", len(records), "skipped", skipped)
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "table", "output format: table or csv")
}
