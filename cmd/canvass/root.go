package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kwheaton/canvass/internal/config"
	"github.com/kwheaton/canvass/internal/extract"
	"github.com/kwheaton/canvass/internal/ingest"
	"github.com/kwheaton/canvass/internal/lexicon"
	"github.com/kwheaton/canvass/internal/ocr"
	"github.com/kwheaton/canvass/internal/parse"
	"github.com/kwheaton/canvass/internal/pipeline"
	"github.com/kwheaton/canvass/internal/preprocess"
	"github.com/kwheaton/canvass/internal/store"
	"github.com/kwheaton/canvass/version"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "canvass",
	Short: "Turn scanned city directory pages into structured records",
	Long: `Canvass converts scanned historical city and telephone directory pages
into structured records: surname, given name, occupation and home address.

The pipeline OCRs each page (tesseract, with image preprocessing variants),
segments the text into directory entries, parses every entry against a
swappable lexicon of occupation and street vocabulary, and carries ditto
surnames forward across lines and page boundaries. Results land in CSV,
XLSX and an optional SQLite or Postgres store.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./canvass.yaml or ~/.canvass/canvass.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)

	rootCmd.AddCommand(processCmd, parseCmd, ocrCmd, exportCmd, watchCmd, configCmd, versionCmd)
}

// loadConfig builds the runtime config honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

// newLogger builds the process logger from the config, with the
// --log-level flag taking precedence. Logs go to stderr; stdout belongs
// to the data the subcommands print.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// loadLexicon resolves the configured lexicon file, falling back to the
// embedded defaults when no path is set.
func loadLexicon(cfg *config.Config) (*lexicon.Lexicon, error) {
	if cfg.Lexicon.Path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(cfg.Lexicon.Path)
}

// newParser builds the line parser from cfg.
func newParser(cfg *config.Config, lex *lexicon.Lexicon, logger *slog.Logger) *parse.Parser {
	return parse.NewParser(parse.Options{
		Lexicon:  lex,
		TieBreak: cfg.ToTieBreak(),
		Logger:   logger,
	})
}

// newExtractor wires preprocessing and the OCR engine into a text
// extractor.
func newExtractor(cfg *config.Config, logger *slog.Logger) extract.TextExtractor {
	pre := preprocess.New(cfg.ToPreprocessConfig(), logger)
	engine := ocr.NewEngine(cfg.ToOCRConfig(), logger)
	return extract.NewOCRAdapter(pre, engine, logger)
}

// buildRunner assembles the full page pipeline. With withStore, the
// configured database is opened and migrated; the returned cleanup closes
// it. A nil store runs the pipeline without persistence.
func buildRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, withStore bool) (*pipeline.Runner, func(), error) {
	lex, err := loadLexicon(cfg)
	if err != nil {
		return nil, nil, err
	}
	pages := pipeline.NewPageProcessor(newExtractor(cfg, logger), newParser(cfg, lex, logger), lex, logger)

	var st pipeline.Store
	cleanup := func() {}
	if withStore && cfg.Store.DSN != "" {
		db, err := store.Open(cfg.Store.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		st = db
		cleanup = func() { _ = db.Close() }
	}

	return pipeline.NewRunner(pages, st, logger), cleanup, nil
}

// expandInputs turns discovered files into OCR-ready page images: PDFs
// are rasterized one image per page, formats tesseract cannot read are
// converted. The returned cleanup removes the temporary images.
func expandInputs(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string) ([]string, func(), error) {
	runner := ocr.NewRunner()
	ras := ingest.NewPDFRasterizer(cfg.ToPDFConfig(), runner, logger)

	var (
		out      []string
		cleanups []func()
	)
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}
	for _, p := range paths {
		switch {
		case strings.EqualFold(filepath.Ext(p), ".pdf"):
			pages, fn, err := ras.Rasterize(ctx, p)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("rasterize %s: %w", p, err)
			}
			cleanups = append(cleanups, fn)
			out = append(out, pages...)
		case ingest.NeedsConversion(p):
			png, fn, err := ingest.ConvertToPNG(ctx, runner, cfg.Ingest.Converter, p)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("convert %s: %w", p, err)
			}
			cleanups = append(cleanups, fn)
			out = append(out, png)
		default:
			out = append(out, p)
		}
	}
	return out, cleanup, nil
}
