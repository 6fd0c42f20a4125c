package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kwheaton/canvass/internal/ocr"
	"github.com/kwheaton/canvass/internal/preprocess"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type engineFunc func(ctx context.Context, imagePath string) (ocr.Result, error)

func (f engineFunc) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	return f(ctx, imagePath)
}

func writeTestPage(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 240, G: 240, B: 240, A: 255}
			if x%3 == 0 {
				c = color.RGBA{R: 20, G: 20, B: 20, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

func TestExtractPicksBestVariant(t *testing.T) {
	path := writeTestPage(t, t.TempDir(), 8, 8)
	byVariant := map[string]string{
		"page.png":     "short",
		"gray.png":     "the longest recognition across all variants",
		"contrast.png": "middling recognition",
		"binary.png":   "tiny",
	}
	eng := engineFunc(func(_ context.Context, imagePath string) (ocr.Result, error) {
		return ocr.Result{Text: byVariant[filepath.Base(imagePath)], Method: "tesseract-exec"}, nil
	})

	a := NewOCRAdapter(preprocess.New(preprocess.Config{}, testLogger()), eng, testLogger())
	res, err := a.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Variant != "gray" {
		t.Fatalf("Variant = %q, want gray", res.Variant)
	}
	if res.Text != byVariant["gray.png"] {
		t.Fatalf("Text = %q", res.Text)
	}
}

func TestExtractWithoutPreprocessor(t *testing.T) {
	eng := engineFunc(func(_ context.Context, imagePath string) (ocr.Result, error) {
		return ocr.Result{Text: "recognized " + filepath.Base(imagePath)}, nil
	})

	a := NewOCRAdapter(nil, eng, testLogger())
	res, err := a.Extract(context.Background(), "/scans/page7.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Variant != "orig" || res.Text != "recognized page7.png" {
		t.Fatalf("got %+v, want the original passed straight through", res)
	}
}

func TestExtractAllVariantsFail(t *testing.T) {
	eng := engineFunc(func(context.Context, string) (ocr.Result, error) {
		return ocr.Result{}, errors.New("recognize failed")
	})

	a := NewOCRAdapter(nil, eng, testLogger())
	if _, err := a.Extract(context.Background(), "/scans/page7.png"); err == nil {
		t.Fatal("want error when every variant fails")
	}
}

func TestExtractTopCropsHeader(t *testing.T) {
	path := writeTestPage(t, t.TempDir(), 10, 10)
	var gotW, gotH int
	eng := engineFunc(func(_ context.Context, imagePath string) (ocr.Result, error) {
		f, err := os.Open(imagePath)
		if err != nil {
			return ocr.Result{}, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return ocr.Result{}, err
		}
		gotW, gotH = img.Bounds().Dx(), img.Bounds().Dy()
		return ocr.Result{Text: "ST PAUL DIRECTORY 1886"}, nil
	})

	a := NewOCRAdapter(nil, eng, testLogger())
	res, err := a.ExtractTop(context.Background(), path, 0.2)
	if err != nil {
		t.Fatalf("ExtractTop: %v", err)
	}
	if gotW != 10 || gotH != 2 {
		t.Fatalf("engine saw %dx%d strip, want 10x2", gotW, gotH)
	}
	if res.Text != "ST PAUL DIRECTORY 1886" || res.Variant != "head" {
		t.Fatalf("got %+v", res)
	}
}
