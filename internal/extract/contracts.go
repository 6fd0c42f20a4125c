package extract

import "context"

// TextExtractor is Stage 1: page image -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextResult, error)
	// ExtractTop recognizes only the top fraction of the page, where the
	// running head carries the directory year.
	ExtractTop(ctx context.Context, path string, fraction float64) (TextResult, error)
}

type TextResult struct {
	Text       string
	Confidence float32
	Variant    string // preprocess variant that won: "orig" | "gray" | "contrast" | "binary"
	Method     string
	Warnings   []string
}
