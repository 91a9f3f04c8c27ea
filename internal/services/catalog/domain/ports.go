package domain

import (
	"context"
	"time"

	"curator/internal/core/eventlog"
	"curator/internal/core/relations"
)

// EntityRepo reads catalog entities
type EntityRepo interface {
	Select(ctx context.Context, f Filter) ([]Entity, error)
	Get(ctx context.Context, id int64) (Entity, error)
	FindByAccession(ctx context.Context, accession string) (Entity, error)
}

// EventStore appends to and reads entity histories
type EventStore interface {
	AppendEvent(ctx context.Context, entityID int64, tag eventlog.Tag, note string, at time.Time) error
	EventsOf(ctx context.Context, entityID int64) ([]eventlog.Event, error)
}

// RelationLookup answers parent and child questions
type RelationLookup interface {
	ChildrenOf(ctx context.Context, id int64) ([]int64, error)
	Nodes(ctx context.Context) ([]relations.Node, error)
}

// Catalog is everything the maintenance engine needs from storage
type Catalog interface {
	EntityRepo
	EventStore
	RelationLookup
}
