package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kwheaton/canvass/internal/ocr"
)

type PDFConfig struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit
}

// PDFRasterizer renders directory volumes shipped as PDF into per-page
// PNGs that feed the normal image path.
type PDFRasterizer struct {
	cfg    PDFConfig
	runner ocr.Runner
	logger *slog.Logger
}

func NewPDFRasterizer(cfg PDFConfig, runner ocr.Runner, logger *slog.Logger) *PDFRasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if runner == nil {
		runner = ocr.NewRunner()
	}
	return &PDFRasterizer{cfg: cfg, runner: runner, logger: logger}
}

// PageCount reads the page count without rasterizing.
func (r *PDFRasterizer) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// Rasterize renders each page to PNG and returns the image paths in page
// order with a cleanup func for the temp dir.
func (r *PDFRasterizer) Rasterize(ctx context.Context, path string) ([]string, func(), error) {
	noop := func() {}
	tmpDir, err := os.MkdirTemp("", "canvass-pdf-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", path, prefix)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("pdftoppm %s: %s: %w", filepath.Base(path), string(errb), err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool { return naturalLess(matches[i], matches[j]) })
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, noop, fmt.Errorf("pdftoppm rendered no pages for %s", filepath.Base(path))
	}

	r.logger.Debug("ingest.pdf.rasterized",
		"path", path,
		"pages", len(matches),
		"dpi", r.cfg.DPI,
	)
	return matches, cleanup, nil
}
