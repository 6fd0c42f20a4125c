// Package preprocess renders OCR-ready variants of a scanned directory
// page. Century-old scans vary wildly in exposure and bleed-through, so a
// single rendition rarely OCRs best; the pipeline recognizes every variant
// and keeps the strongest result.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

type Config struct {
	Disabled bool
	DebugDir string // when set, variants land here as debug_<name>.png and are kept
	Contrast float64 // percentage passed to AdjustContrast, default 30
	Sharpen  float64 // sigma passed to Sharpen, default 1.0
}

// Variant is one rendition of the page written to disk for OCR.
type Variant struct {
	Name string
	Path string
}

type Preprocessor struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Contrast == 0 {
		cfg.Contrast = 30
	}
	if cfg.Sharpen == 0 {
		cfg.Sharpen = 1.0
	}
	return &Preprocessor{cfg: cfg, logger: logger}
}

// Variants renders the page variants and returns their paths with a cleanup
// func. The original file is always the first variant. With a debug dir
// configured the files persist there and cleanup is a no-op.
func (p *Preprocessor) Variants(path string) ([]Variant, func(), error) {
	noop := func() {}
	variants := []Variant{{Name: "orig", Path: path}}
	if p.cfg.Disabled {
		return variants, noop, nil
	}

	img, err := loadImage(path)
	if err != nil {
		return nil, noop, fmt.Errorf("decode image: %w", err)
	}

	outDir := p.cfg.DebugDir
	cleanup := noop
	prefix := ""
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create debug dir: %w", err)
		}
		prefix = "debug_"
	} else {
		tmp, err := os.MkdirTemp("", "canvass-pp-*")
		if err != nil {
			return nil, noop, fmt.Errorf("create temp dir: %w", err)
		}
		outDir = tmp
		cleanup = func() { _ = os.RemoveAll(tmp) }
	}

	gray := imaging.Grayscale(img)
	contrast := imaging.Sharpen(imaging.AdjustContrast(gray, p.cfg.Contrast), p.cfg.Sharpen)
	binary := segment.Threshold(gray, otsuLevel(gray))

	renditions := []struct {
		name string
		img  image.Image
	}{
		{"gray", gray},
		{"contrast", contrast},
		{"binary", binary},
	}
	for _, r := range renditions {
		out := filepath.Join(outDir, prefix+r.name+".png")
		if err := imaging.Save(r.img, out); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("save %s variant: %w", r.name, err)
		}
		variants = append(variants, Variant{Name: r.name, Path: out})
	}

	p.logger.Debug("preprocess.variants.ready",
		"path", path,
		"count", len(variants),
		"dir", outDir,
	)
	return variants, cleanup, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
