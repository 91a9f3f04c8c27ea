// Package mark records an operation as done without computing anything, for backfilling history
package mark

import (
	"context"

	"curator/internal/core/staleness"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// DefaultNote is stored on marked events when no note is given
const DefaultNote = "marked without processing"

// Processor implements domain.Processor
type Processor struct{ Note string }

// New returns a marker storing note on each event
func New(note string) Processor {
	if note == "" {
		note = DefaultNote
	}
	return Processor{Note: note}
}

// Process implements domain.Processor
func (p Processor) Process(ctx context.Context, _ catalog.Entity, _ staleness.Operation) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Label: "marked", Note: p.Note}, nil
}
