package domain

import (
	"context"

	"curator/internal/core/batch"
	"curator/internal/core/staleness"
	catalog "curator/internal/services/catalog/domain"
)

// Processor runs the expensive computation for one entity
type Processor interface {
	Process(ctx context.Context, e catalog.Entity, op staleness.Operation) (Result, error)
}

// Ledger records runs and their outcomes
type Ledger interface {
	StartRun(ctx context.Context, r Run) error
	RecordOutcome(ctx context.Context, row OutcomeRow) error
	FinishRun(ctx context.Context, r Run) error
	Outcomes(ctx context.Context, runID string) ([]OutcomeRow, error)
	GetRun(ctx context.Context, id string) (Run, error)
	// RecentRuns lists runs newest first
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}

// Archive receives every outcome of a finished run for analytics
type Archive interface {
	Archive(ctx context.Context, r Run, outcomes []batch.Outcome) error
}

// RunnerPort is what the cli and other modules call
type RunnerPort interface {
	Run(ctx context.Context, req Request) (Report, error)
}
