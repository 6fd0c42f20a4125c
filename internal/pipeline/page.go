// Package pipeline drives page scans through OCR, entry segmentation and
// parsing, and rolls the results up into runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kwheaton/canvass/internal/entity"
	"github.com/kwheaton/canvass/internal/extract"
	"github.com/kwheaton/canvass/internal/lexicon"
	"github.com/kwheaton/canvass/internal/page"
	"github.com/kwheaton/canvass/internal/parse"
)

// PageProcessor turns one page scan into records. It owns no run state;
// the caller passes the same parse.State for every page of a run.
type PageProcessor struct {
	Extractor extract.TextExtractor
	Parser    *parse.Parser
	Lexicon   *lexicon.Lexicon
	Log       *slog.Logger

	// HeaderFraction is the top slice of the page OCR'd separately to find
	// the directory year. Zero disables the extra pass; the year is then
	// taken from the page text alone.
	HeaderFraction float64
}

func NewPageProcessor(tx extract.TextExtractor, parser *parse.Parser, lex *lexicon.Lexicon, log *slog.Logger) *PageProcessor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &PageProcessor{
		Extractor:      tx,
		Parser:         parser,
		Lexicon:        lex,
		Log:            log,
		HeaderFraction: 0.15,
	}
}

// ProcessPage OCRs one scan and parses every entry on it. An OCR failure
// fails the whole page; parse skips do not, they are collected on the
// outcome. Records come back with page provenance filled in and run
// identity still zero.
func (p *PageProcessor) ProcessPage(ctx context.Context, path string, pageNo int, st *parse.State) (entity.PageOutcome, error) {
	res, err := p.Extractor.Extract(ctx, path)
	if err != nil {
		return entity.PageOutcome{}, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	outcome := entity.PageOutcome{
		Source:        filepath.Base(path),
		PageNo:        pageNo,
		Year:          p.sniffYear(ctx, path, res.Text),
		OCRConfidence: res.Confidence,
		OCRVariant:    res.Variant,
	}

	for _, entry := range page.SegmentEntries(res.Text, p.Lexicon) {
		rec, reason, ok := p.Parser.ParseLine(parse.RawLine{Text: entry.Text, LineNo: entry.LineNo}, st)
		if !ok {
			outcome.Skipped = append(outcome.Skipped, entity.SkippedLine{
				LineNo: entry.LineNo,
				Raw:    entry.Text,
				Reason: reason,
			})
			continue
		}
		rec.Source = outcome.Source
		rec.PageNo = pageNo
		rec.Year = outcome.Year
		outcome.Records = append(outcome.Records, rec)
	}

	p.Log.Debug("pipeline.page.parsed",
		"page", pageNo,
		"source", outcome.Source,
		"records", len(outcome.Records),
		"skipped", len(outcome.Skipped),
	)
	return outcome, nil
}

// sniffYear looks for the directory year in the page header first; the
// header crop is cheap and much less noisy than the body text.
func (p *PageProcessor) sniffYear(ctx context.Context, path, fullText string) string {
	if p.HeaderFraction > 0 {
		head, err := p.Extractor.ExtractTop(ctx, path, p.HeaderFraction)
		if err != nil {
			p.Log.Debug("pipeline.header.failed", "path", path, "error", err)
		} else if y := page.ExtractYear(head.Text); y != "" {
			return y
		}
	}
	return page.ExtractYear(fullText)
}
