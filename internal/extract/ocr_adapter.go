package extract

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/kwheaton/canvass/internal/ocr"
	"github.com/kwheaton/canvass/internal/preprocess"
)

// OCRAdapter runs the OCR engine over every preprocess variant of a page
// and keeps the recognition with the most text. A nil preprocessor
// recognizes the original file only.
type OCRAdapter struct {
	pre    *preprocess.Preprocessor
	engine ocr.Engine
	logger *slog.Logger
}

func NewOCRAdapter(pre *preprocess.Preprocessor, engine ocr.Engine, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{pre: pre, engine: engine, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextResult, error) {
	variants := []preprocess.Variant{{Name: "orig", Path: path}}
	cleanup := func() {}
	if a.pre != nil {
		var err error
		variants, cleanup, err = a.pre.Variants(path)
		if err != nil {
			return TextResult{}, fmt.Errorf("preprocess %s: %w", filepath.Base(path), err)
		}
	}
	defer cleanup()

	var best TextResult
	var warns []string
	var lastErr error
	got := false
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		res, err := a.engine.Recognize(ctx, v.Path)
		warns = append(warns, res.Warnings...)
		if err != nil {
			lastErr = err
			warns = append(warns, err.Error())
			continue
		}
		a.logger.Debug("extract.variant.done",
			"path", path,
			"variant", v.Name,
			"chars", len(res.Text),
			"confidence", res.Confidence,
		)
		if !got || betterThan(res, best) {
			best = TextResult{
				Text:       res.Text,
				Confidence: res.Confidence,
				Variant:    v.Name,
				Method:     res.Method,
			}
			got = true
		}
	}
	if !got {
		return TextResult{Warnings: warns}, fmt.Errorf("recognize %s: %w", filepath.Base(path), lastErr)
	}
	best.Warnings = warns
	return best, nil
}

// betterThan prefers more text, then higher confidence.
func betterThan(res ocr.Result, best TextResult) bool {
	if len(res.Text) != len(best.Text) {
		return len(res.Text) > len(best.Text)
	}
	return res.Confidence > best.Confidence
}

func (a *OCRAdapter) ExtractTop(ctx context.Context, path string, fraction float64) (TextResult, error) {
	if fraction <= 0 || fraction > 1 {
		fraction = 0.2
	}
	img, err := imaging.Open(path)
	if err != nil {
		return TextResult{}, fmt.Errorf("open image: %w", err)
	}
	b := img.Bounds()
	h := int(float64(b.Dy()) * fraction)
	if h < 1 {
		h = 1
	}
	strip := imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h))

	tmp, err := os.CreateTemp("", "canvass-head-*.png")
	if err != nil {
		return TextResult{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)
	if err := imaging.Save(strip, tmpPath); err != nil {
		return TextResult{}, fmt.Errorf("save header strip: %w", err)
	}

	res, err := a.engine.Recognize(ctx, tmpPath)
	if err != nil {
		return TextResult{Warnings: res.Warnings}, fmt.Errorf("recognize header: %w", err)
	}
	return TextResult{
		Text:       res.Text,
		Confidence: res.Confidence,
		Variant:    "head",
		Method:     res.Method,
		Warnings:   res.Warnings,
	}, nil
}
