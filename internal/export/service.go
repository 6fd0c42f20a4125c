package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kwheaton/canvass/internal/entity"
)

// Source is the slice of the store the exporter reads from.
type Source interface {
	GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	LatestRun(ctx context.Context) (*entity.Run, error)
	ListRecords(ctx context.Context, runID uuid.UUID) ([]*entity.Record, error)
}

// Service is a tiny façade over the store that re-exports stored runs.
type Service struct {
	source Source
	logger *slog.Logger
}

func NewService(source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// resolveRun turns a run selector into a run. Empty or "latest" picks
// the most recently started run.
func (s *Service) resolveRun(ctx context.Context, runID string) (*entity.Run, error) {
	if runID == "" || runID == "latest" {
		return s.source.LatestRun(ctx)
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", runID, err)
	}
	return s.source.GetRun(ctx, id)
}

// ExportCSV writes the records of a run to w and returns the row count.
func (s *Service) ExportCSV(ctx context.Context, runID string, w io.Writer) (int, error) {
	start := time.Now()
	run, err := s.resolveRun(ctx, runID)
	if err != nil {
		return 0, err
	}
	records, err := s.source.ListRecords(ctx, run.ID)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, records); err != nil {
		return 0, err
	}
	s.logger.Info("export.csv.ok",
		"run_id", run.ID.String(),
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(records), nil
}

// ExportXLSX returns an XLSX workbook (as bytes) for the records of a run.
func (s *Service) ExportXLSX(ctx context.Context, runID string) ([]byte, error) {
	start := time.Now()
	run, err := s.resolveRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	records, err := s.source.ListRecords(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	buf, err := BuildXLSX(records)
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"run_id", run.ID.String(),
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}
