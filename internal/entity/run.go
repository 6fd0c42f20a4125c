package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run represents one processing run for data transfer between layers.
//
// A run covers an ordered set of page scans processed with a single parser
// state; ditto surnames never carry across run boundaries.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Pages        int        `json:"pages"`
	FailedPages  int        `json:"failed_pages"`
	Records      int        `json:"records"`
	SkippedLines int        `json:"skipped_lines"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
