package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kwheaton/canvass/constants"
	"github.com/kwheaton/canvass/internal/common"
	"github.com/kwheaton/canvass/internal/ocr"
)

// ConvertToPNG converts formats tesseract cannot read directly (jp2 scans
// from library archives) to a temporary PNG using the chosen converter.
// converter: "magick" | "convert" | "gm"
//
// Returns (outPath, cleanup, err). Call cleanup() to remove temp files.
func ConvertToPNG(ctx context.Context, r ocr.Runner, converter, in string) (string, func(), error) {
	noop := func() {}
	tmpDir, err := os.MkdirTemp("", "canvass-conv-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	switch converter {
	case "magick":
		if _, errb, err2 := r.Run(ctx, "magick", in, out); err2 != nil {
			return "", cleanup, fmt.Errorf("magick convert failed: %s: %w", string(errb), err2)
		}
	case "convert":
		if _, errb, err2 := r.Run(ctx, "convert", in, out); err2 != nil {
			return "", cleanup, fmt.Errorf("convert failed: %s: %w", string(errb), err2)
		}
	case "gm":
		if _, errb, err2 := r.Run(ctx, "gm", "convert", in, out); err2 != nil {
			return "", cleanup, fmt.Errorf("gm convert failed: %s: %w", string(errb), err2)
		}
	default:
		cleanup()
		return "", noop, fmt.Errorf("jp2 not supported, set converter to one of magick | convert | gm: %w", common.ErrUnsupportedFormat)
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("conversion produced no output: %v", statErr)
	}
	return out, cleanup, nil
}

// NeedsConversion reports whether the file must pass through ConvertToPNG
// before OCR.
func NeedsConversion(path string) bool {
	_, ok := constants.ConvertExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
