//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine recognizes in-process through the tesseract C bindings.
// One client recognizes all PSM trials; boxes from the last trial feed the
// word-level confidence.
type gosseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func newGosseractEngine(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if len(cfg.PSMs) == 0 {
		cfg.PSMs = []int{3}
	}
	return &gosseractEngine{cfg: cfg, logger: logger}, nil
}

func (g *gosseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	client := gosseract.NewClient()
	defer client.Close()

	if g.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(g.cfg.Lang); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}

	res := Result{Method: "gosseract"}
	var lastErr error
	got := false
	for _, psm := range g.cfg.PSMs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
			lastErr = err
			continue
		}
		if err := client.SetImage(imagePath); err != nil {
			return Result{}, fmt.Errorf("set image: %w", err)
		}
		txt, err := client.Text()
		if err != nil {
			lastErr = err
			res.Warnings = append(res.Warnings, err.Error())
			continue
		}
		if !got || len(txt) > len(res.Text) {
			res.Text = txt
			res.PSM = psm
			got = true
		}
	}
	if !got {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("gosseract recognize: %w", lastErr)
	}

	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += float64(b.Confidence)
		}
		res.Confidence = float32(sum / float64(len(boxes)) / 100.0)
	} else {
		res.Confidence = heuristicConfidence(res.Text)
	}

	res.Duration = time.Since(start)
	g.logger.Debug("ocr.gosseract.done",
		"path", imagePath,
		"psm", res.PSM,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
