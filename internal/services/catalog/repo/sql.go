// Package repo stores the catalog in postgres or sqlite, or in memory from a yaml fixture
package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"curator/internal/core/eventlog"
	"curator/internal/core/relations"
	"curator/internal/modkit/repokit"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/store"
	"curator/internal/services/catalog/domain"
)

type (
	sqlRepo   struct{ q repokit.Queryer }
	sqlBinder struct{}
)

// Storage is the catalog plus the writes used for seeding
type Storage interface {
	domain.Catalog
	Upsert(ctx context.Context, e domain.Entity) error
}

// NewSQL returns a binder usable with both the postgres and sqlite seams; the
// statements stick to the shared subset with $N placeholders used once each, in order
func NewSQL() repokit.Binder[Storage] { return sqlBinder{} }

// Bind implements repokit.Binder
func (sqlBinder) Bind(q repokit.Queryer) Storage { return &sqlRepo{q: q} }

const entityCols = `id, accession, kind, subsumed_by, merged_into, troubled`

func scanEntity(r store.Row) (domain.Entity, error) {
	var e domain.Entity
	err := r.Scan(&e.ID, &e.Accession, &e.Kind, &e.SubsumedBy, &e.MergedInto, &e.Troubled)
	return e, err
}

// Select implements domain.EntityRepo
func (s *sqlRepo) Select(ctx context.Context, f domain.Filter) ([]domain.Entity, error) {
	var sb strings.Builder
	var args []any
	sb.WriteString(`SELECT ` + entityCols + ` FROM entities WHERE 1=1`)
	if len(f.IDs) > 0 {
		sb.WriteString(` AND id IN (` + store.Placeholders(len(args)+1, len(f.IDs)) + `)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(f.Kinds) > 0 {
		sb.WriteString(` AND kind IN (` + store.Placeholders(len(args)+1, len(f.Kinds)) + `)`)
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}
	sb.WriteString(` ORDER BY id`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}
	out, err := store.Many(ctx, s.q, scanEntity, sb.String(), args...)
	return out, perr.WrapIf(err, perr.ErrorCodeDB, "select entities")
}

// Get implements domain.EntityRepo
func (s *sqlRepo) Get(ctx context.Context, id int64) (domain.Entity, error) {
	e, err := store.One(ctx, s.q, scanEntity, `SELECT `+entityCols+` FROM entities WHERE id = $1`, id)
	return e, notFound(err, "entity "+strconv.FormatInt(id, 10))
}

// FindByAccession implements domain.EntityRepo
func (s *sqlRepo) FindByAccession(ctx context.Context, acc string) (domain.Entity, error) {
	e, err := store.One(ctx, s.q, scanEntity, `SELECT `+entityCols+` FROM entities WHERE accession = $1`, acc)
	return e, notFound(err, "entity "+acc)
}

func notFound(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, perr.ErrNotFound):
		return perr.NotFoundf("%s not found", what)
	}
	return perr.Wrapf(err, perr.ErrorCodeDB, "load %s", what)
}

// AppendEvent implements domain.EventStore
func (s *sqlRepo) AppendEvent(ctx context.Context, id int64, tag eventlog.Tag, note string, at time.Time) error {
	if !tag.Resolved() {
		return perr.InvalidArgf("append event to %d: unresolved event type", id)
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO entity_events (entity_id, type, note, at) VALUES ($1, $2, $3, $4)`,
		id, tag.Name(), note, at.UTC(),
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "append event")
}

// EventsOf implements domain.EventStore; unknown stored types come back unresolved
func (s *sqlRepo) EventsOf(ctx context.Context, id int64) ([]eventlog.Event, error) {
	evs, err := store.Many(ctx, s.q, func(r store.Row) (eventlog.Event, error) {
		var (
			e    eventlog.Event
			name string
		)
		if err := r.Scan(&name, &e.At, &e.Note); err != nil {
			return e, err
		}
		e.Type = eventlog.Lookup(name)
		e.At = e.At.UTC()
		return e, nil
	}, `SELECT type, at, note FROM entity_events WHERE entity_id = $1 ORDER BY at, id`, id)
	return evs, perr.WrapIf(err, perr.ErrorCodeDB, "load events")
}

// ChildrenOf implements domain.RelationLookup
func (s *sqlRepo) ChildrenOf(ctx context.Context, id int64) ([]int64, error) {
	ids, err := store.Many(ctx, s.q, func(r store.Row) (int64, error) {
		var v int64
		err := r.Scan(&v)
		return v, err
	}, `SELECT id FROM entities WHERE subsumed_by = $1 OR merged_into = $2 ORDER BY id`, id, id)
	return ids, perr.WrapIf(err, perr.ErrorCodeDB, "load children")
}

// Nodes implements domain.RelationLookup
func (s *sqlRepo) Nodes(ctx context.Context) ([]relations.Node, error) {
	ns, err := store.Many(ctx, s.q, func(r store.Row) (relations.Node, error) {
		var n relations.Node
		err := r.Scan(&n.ID, &n.SubsumedBy, &n.MergedInto)
		return n, err
	}, `SELECT id, subsumed_by, merged_into FROM entities ORDER BY id`)
	return ns, perr.WrapIf(err, perr.ErrorCodeDB, "load relations")
}

// Upsert inserts e or overwrites the stored row with the same id
func (s *sqlRepo) Upsert(ctx context.Context, e domain.Entity) error {
	_, err := s.q.Exec(ctx, `INSERT INTO entities (`+entityCols+`) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			accession = excluded.accession,
			kind = excluded.kind,
			subsumed_by = excluded.subsumed_by,
			merged_into = excluded.merged_into,
			troubled = excluded.troubled`,
		e.ID, e.Accession, e.Kind, e.SubsumedBy, e.MergedInto, e.Troubled,
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "upsert entity")
}
