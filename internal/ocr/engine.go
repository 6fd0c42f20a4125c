// Package ocr recognizes text on scanned directory pages. The default
// engine shells out to the tesseract binary; a cgo-free build can opt in
// to the gosseract bindings with the "gosseract" build tag.
package ocr

import (
	"context"
	"log/slog"
	"time"
)

type Config struct {
	Tesseract   string        // binary name or absolute path; if empty -> "tesseract"
	Lang        string        // default "eng"
	PSMs        []int         // page segmentation modes to try; default 3, 4, 6
	OEM         int           // 1 = LSTM; 0 keeps the tesseract default
	TessdataDir string
	EnableTSV   bool          // mean word confidence from an extra TSV pass
	Retries     uint          // extra attempts on exec failure; default 2
	RetryDelay  time.Duration // default 500ms

	UseGosseract bool // prefer the in-process bindings when built in

	Runner Runner // stubbed in tests; nil -> os/exec
}

// Result is one recognition of one image file.
type Result struct {
	Text       string
	Confidence float32
	Method     string // "tesseract-exec" | "gosseract"
	PSM        int
	Duration   time.Duration
	Warnings   []string
}

type Engine interface {
	Recognize(ctx context.Context, imagePath string) (Result, error)
}

// NewEngine picks the configured engine. A gosseract preference degrades
// to the exec engine when the binary was built without the bindings.
func NewEngine(cfg Config, logger *slog.Logger) Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UseGosseract {
		eng, err := newGosseractEngine(cfg, logger)
		if err == nil {
			return eng
		}
		logger.Warn("ocr.gosseract.unavailable", "error", err)
	}
	return NewExecEngine(cfg, logger)
}
