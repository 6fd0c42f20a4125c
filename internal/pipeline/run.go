package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kwheaton/canvass/constants"
	"github.com/kwheaton/canvass/internal/entity"
	"github.com/kwheaton/canvass/internal/parse"
)

// Store is the slice of the store the runner writes to.
type Store interface {
	CreateRun(ctx context.Context, run *entity.Run) error
	FinishRun(ctx context.Context, run *entity.Run) error
	InsertRecords(ctx context.Context, records []*entity.Record) error
}

// Runner processes an ordered batch of page scans as one run: one run id,
// one parser state, pages strictly in sequence so ditto surnames carry
// across page boundaries.
type Runner struct {
	Pages *PageProcessor
	Store Store // nil disables persistence
	Log   *slog.Logger
}

func NewRunner(pages *PageProcessor, st Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Pages: pages, Store: st, Log: log}
}

// Run processes paths in the given order. A failed page is logged and
// counted, never retried, and never stops the remaining pages; a store
// failure stops the run. The returned run reflects the final counters
// even when an error is also returned.
func (r *Runner) Run(ctx context.Context, source string, paths []string) (*entity.Run, []entity.PageOutcome, error) {
	run := &entity.Run{
		ID:        uuid.New(),
		Source:    source,
		Status:    string(constants.RunStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	if r.Store != nil {
		if err := r.Store.CreateRun(ctx, run); err != nil {
			return nil, nil, err
		}
	}
	r.Log.Info("pipeline.run.started", "run_id", run.ID, "source", source, "pages", len(paths))

	var (
		st       parse.State
		outcomes []entity.PageOutcome
		failed   int
	)
	for i, path := range paths {
		if ctx.Err() != nil {
			failed += len(paths) - i
			run.ErrorMessage = ctx.Err().Error()
			break
		}
		pageNo := i + 1

		outcome, err := r.Pages.ProcessPage(ctx, path, pageNo, &st)
		if err != nil {
			failed++
			r.Log.Error("pipeline.page.failed", "page", pageNo, "path", path, "error", err)
			continue
		}

		for j := range outcome.Records {
			rec := &outcome.Records[j]
			rec.ID = uuid.New()
			rec.RunID = run.ID
			rec.CreatedAt = time.Now().UTC()
		}
		run.Records += len(outcome.Records)
		run.SkippedLines += len(outcome.Skipped)
		outcomes = append(outcomes, outcome)

		if r.Store != nil && len(outcome.Records) > 0 {
			batch := make([]*entity.Record, len(outcome.Records))
			for j := range outcome.Records {
				batch[j] = &outcome.Records[j]
			}
			if err := r.Store.InsertRecords(ctx, batch); err != nil {
				return r.finish(ctx, run, len(paths), failed, outcomes, err)
			}
		}

		r.Log.Info("pipeline.page.done",
			"page", pageNo,
			"records", len(outcome.Records),
			"skipped", len(outcome.Skipped),
			"confidence", outcome.OCRConfidence,
		)
	}

	return r.finish(ctx, run, len(paths), failed, outcomes, nil)
}

// finish closes out the run row and decides the final status. The store
// write uses a detached context so a canceled run still gets recorded.
func (r *Runner) finish(ctx context.Context, run *entity.Run, pages, failed int, outcomes []entity.PageOutcome, cause error) (*entity.Run, []entity.PageOutcome, error) {
	run.Pages = pages
	run.FailedPages = failed
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	switch {
	case cause != nil:
		run.Status = string(constants.RunStatusFailed)
		run.ErrorMessage = cause.Error()
	case pages > 0 && failed == pages:
		run.Status = string(constants.RunStatusFailed)
		if run.ErrorMessage == "" {
			run.ErrorMessage = "all pages failed"
		}
	case failed > 0:
		run.Status = string(constants.RunStatusPartial)
	default:
		run.Status = string(constants.RunStatusCompleted)
	}

	if r.Store != nil {
		if err := r.Store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			r.Log.Error("pipeline.run.finish_failed", "run_id", run.ID, "error", err)
			if cause == nil {
				cause = err
			}
		}
	}

	r.Log.Info("pipeline.run.done",
		"run_id", run.ID,
		"status", run.Status,
		"pages", run.Pages,
		"failed_pages", run.FailedPages,
		"records", run.Records,
		"skipped_lines", run.SkippedLines,
	)
	return run, outcomes, cause
}
