package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kwheaton/canvass/internal/extract"
	"github.com/kwheaton/canvass/internal/parse"
	"github.com/kwheaton/canvass/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExtractor serves canned page text keyed by base name.
type fakeExtractor struct {
	pages    map[string]string
	head     string
	fail     map[string]error
	topCalls int
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (extract.TextResult, error) {
	base := filepath.Base(path)
	if err := f.fail[base]; err != nil {
		return extract.TextResult{}, err
	}
	return extract.TextResult{
		Text:       f.pages[base],
		Confidence: 0.8,
		Variant:    "gray",
		Method:     "tesseract",
	}, nil
}

func (f *fakeExtractor) ExtractTop(_ context.Context, _ string, _ float64) (extract.TextResult, error) {
	f.topCalls++
	if f.head == "" {
		return extract.TextResult{}, errors.New("no header")
	}
	return extract.TextResult{Text: f.head, Variant: "head"}, nil
}

func newTestProcessor(fx *fakeExtractor) *PageProcessor {
	parser := parse.NewParser(parse.Options{Logger: testLogger()})
	return NewPageProcessor(fx, parser, nil, testLogger())
}

func TestProcessPage(t *testing.T) {
	fx := &fakeExtractor{
		pages: map[string]string{
			"page7.png": `" Orphan clk
Smith John carp 123 Main St
" Anna clk`,
		},
		head: "ST PAUL CITY DIRECTORY. 1886",
	}
	p := newTestProcessor(fx)

	var st parse.State
	outcome, err := p.ProcessPage(context.Background(), "scans/page7.png", 7, &st)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}

	if outcome.Source != "page7.png" || outcome.PageNo != 7 {
		t.Errorf("provenance wrong: %+v", outcome)
	}
	if outcome.Year != "1886" {
		t.Errorf("year = %q, want 1886", outcome.Year)
	}
	if outcome.OCRConfidence != 0.8 || outcome.OCRVariant != "gray" {
		t.Errorf("ocr summary wrong: %+v", outcome)
	}

	// The leading ditto has no surname to refer back to.
	if len(outcome.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(outcome.Skipped))
	}
	if outcome.Skipped[0].LineNo != 1 || outcome.Skipped[0].Reason != parse.SkipNoSurname {
		t.Errorf("unexpected skip: %+v", outcome.Skipped[0])
	}

	if len(outcome.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(outcome.Records))
	}
	john := outcome.Records[0]
	if john.Surname != "Smith" || john.GivenName != "John" || john.Occupation != "carp" || john.HomeAddress != "123 Main St" {
		t.Errorf("unexpected record: %+v", john)
	}
	if john.Source != "page7.png" || john.PageNo != 7 || john.Year != "1886" || john.LineNo != 2 {
		t.Errorf("record provenance wrong: %+v", john)
	}
	anna := outcome.Records[1]
	if anna.Surname != "Smith" || anna.GivenName != "Anna" || !anna.SurnameCarried {
		t.Errorf("ditto record wrong: %+v", anna)
	}
}

func TestProcessPageExtractFails(t *testing.T) {
	fx := &fakeExtractor{fail: map[string]error{"page1.png": errors.New("tesseract exploded")}}
	p := newTestProcessor(fx)

	var st parse.State
	_, err := p.ProcessPage(context.Background(), "page1.png", 1, &st)
	if err == nil || !strings.Contains(err.Error(), "extract page1.png") {
		t.Fatalf("expected extract error, got %v", err)
	}
}

func TestProcessPageYearFromBody(t *testing.T) {
	fx := &fakeExtractor{
		pages: map[string]string{
			"page1.png": "DULUTH CITY DIRECTORY 1886.\nSmith John carp 123 Main St",
		},
	}
	p := newTestProcessor(fx)
	p.HeaderFraction = 0

	var st parse.State
	outcome, err := p.ProcessPage(context.Background(), "page1.png", 1, &st)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if fx.topCalls != 0 {
		t.Errorf("header pass ran %d times with HeaderFraction=0", fx.topCalls)
	}
	if outcome.Year != "1886" {
		t.Errorf("year = %q, want 1886", outcome.Year)
	}
	if len(outcome.Records) != 1 {
		t.Errorf("banner line must not parse, got %d records", len(outcome.Records))
	}
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestRunPersistsAndCarriesAcrossPages(t *testing.T) {
	fx := &fakeExtractor{
		pages: map[string]string{
			"page1.png": "Smith John carp 123 Main St",
			"page2.png": `" Anna clk`,
		},
	}
	st := openTestStore(t)
	r := NewRunner(newTestProcessor(fx), st, testLogger())

	ctx := context.Background()
	run, outcomes, err := r.Run(ctx, "scans", []string{"page1.png", "page2.png"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if run.Status != "COMPLETED" || run.Pages != 2 || run.FailedPages != 0 || run.Records != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}

	stored, err := st.ListRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("got %d stored records, want 2", len(stored))
	}
	// The page 2 ditto picked up the surname parsed on page 1.
	anna := stored[1]
	if anna.Surname != "Smith" || anna.GivenName != "Anna" || !anna.SurnameCarried || anna.PageNo != 2 {
		t.Errorf("carry across pages lost: %+v", anna)
	}
	if anna.RunID != run.ID || anna.ID == uuid.Nil {
		t.Errorf("run identity missing: %+v", anna)
	}

	saved, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if saved.Status != "COMPLETED" || saved.FinishedAt == nil {
		t.Errorf("run row not finished: %+v", saved)
	}
}

func TestRunPartialOnPageFailure(t *testing.T) {
	fx := &fakeExtractor{
		pages: map[string]string{"page1.png": "Smith John carp 123 Main St"},
		fail:  map[string]error{"page2.png": errors.New("unreadable scan")},
	}
	r := NewRunner(newTestProcessor(fx), nil, testLogger())

	run, outcomes, err := r.Run(context.Background(), "scans", []string{"page1.png", "page2.png"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "PARTIAL" || run.FailedPages != 1 || run.Pages != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if len(outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1", len(outcomes))
	}
}

func TestRunAllPagesFail(t *testing.T) {
	fx := &fakeExtractor{
		fail: map[string]error{
			"page1.png": errors.New("unreadable scan"),
			"page2.png": errors.New("unreadable scan"),
		},
	}
	r := NewRunner(newTestProcessor(fx), nil, testLogger())

	run, _, err := r.Run(context.Background(), "scans", []string{"page1.png", "page2.png"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "FAILED" || run.FailedPages != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.ErrorMessage != "all pages failed" {
		t.Errorf("error message = %q", run.ErrorMessage)
	}
}

func TestRunWithoutStore(t *testing.T) {
	fx := &fakeExtractor{pages: map[string]string{"page1.png": "Smith John carp 123 Main St"}}
	r := NewRunner(newTestProcessor(fx), nil, testLogger())

	run, outcomes, err := r.Run(context.Background(), "scans", []string{"page1.png"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "COMPLETED" || run.Records != 1 {
		t.Errorf("unexpected run: %+v", run)
	}
	rec := outcomes[0].Records[0]
	if rec.ID == uuid.Nil || rec.RunID != run.ID {
		t.Errorf("record identity missing without store: %+v", rec)
	}
}

func TestRunCanceled(t *testing.T) {
	fx := &fakeExtractor{pages: map[string]string{"page1.png": "Smith John carp 123 Main St"}}
	r := NewRunner(newTestProcessor(fx), nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run, _, err := r.Run(ctx, "scans", []string{"page1.png", "page2.png"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "FAILED" || run.FailedPages != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.ErrorMessage != context.Canceled.Error() {
		t.Errorf("error message = %q", run.ErrorMessage)
	}
}
