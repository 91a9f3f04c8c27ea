// Package repo stores the run ledger in sql or memory and archives outcomes to clickhouse
package repo

import (
	"context"
	_ "embed"
	"time"

	"curator/internal/modkit/repokit"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/store"
	"curator/internal/services/maintenance/domain"
)

var (
	//go:embed schema_pg.sql
	schemaPG string
	//go:embed schema_sqlite.sql
	schemaSQLite string
)

// Schema holds the run ledger tables
var Schema = repokit.Schema{Name: "ledger", PG: schemaPG, SQLite: schemaSQLite}

// Migrate creates the ledger tables if they are missing
func Migrate(ctx context.Context, q repokit.Queryer, d repokit.Dialect) error {
	return Schema.Apply(ctx, q, d)
}

type (
	sqlLedger struct{ q repokit.Queryer }
	binder    struct{}
)

// NewSQL returns a ledger binder for the postgres or sqlite seam
func NewSQL() repokit.Binder[domain.Ledger] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.Ledger { return &sqlLedger{q: q} }

// StartRun implements domain.Ledger
func (l *sqlLedger) StartRun(ctx context.Context, r domain.Run) error {
	_, err := l.q.Exec(ctx, `INSERT INTO maintenance_runs
		(run_id, operation, mode, cutoff, concurrency, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Operation, r.Mode, utcPtr(r.Cutoff), r.Concurrency, r.StartedAt.UTC(),
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert run")
}

// RecordOutcome implements domain.Ledger; a repeated entity within a run keeps the latest row
func (l *sqlLedger) RecordOutcome(ctx context.Context, o domain.OutcomeRow) error {
	_, err := l.q.Exec(ctx, `INSERT INTO maintenance_outcomes
		(run_id, entity_id, status, label, detail, at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, entity_id) DO UPDATE SET
			status = excluded.status,
			label = excluded.label,
			detail = excluded.detail,
			at = excluded.at`,
		o.RunID, o.EntityID, o.Status, o.Label, o.Detail, o.At.UTC(),
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert outcome")
}

// FinishRun implements domain.Ledger
func (l *sqlLedger) FinishRun(ctx context.Context, r domain.Run) error {
	tag, err := l.q.Exec(ctx, `UPDATE maintenance_runs
		SET finished_at = $1, succeeded = $2, skipped = $3, failed = $4, unsupported = $5
		WHERE run_id = $6`,
		utcPtr(r.FinishedAt), r.Succeeded, r.Skipped, r.Failed, r.Unsupported, r.ID,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "finish run")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("run %s not found", r.ID)
	}
	return nil
}

// Outcomes implements domain.Ledger, ordered by entity id
func (l *sqlLedger) Outcomes(ctx context.Context, runID string) ([]domain.OutcomeRow, error) {
	rows, err := store.Many(ctx, l.q, func(r store.Row) (domain.OutcomeRow, error) {
		o := domain.OutcomeRow{RunID: runID}
		err := r.Scan(&o.EntityID, &o.Status, &o.Label, &o.Detail, &o.At)
		o.At = o.At.UTC()
		return o, err
	}, `SELECT entity_id, status, label, detail, at FROM maintenance_outcomes WHERE run_id = $1 ORDER BY entity_id`, runID)
	return rows, perr.WrapIf(err, perr.ErrorCodeDB, "load outcomes")
}

const runColumns = `run_id, operation, mode, cutoff, concurrency, started_at, finished_at, succeeded, skipped, failed, unsupported`

func scanRun(r store.Row) (domain.Run, error) {
	var (
		run              domain.Run
		cutoff, finished *time.Time
	)
	err := r.Scan(&run.ID, &run.Operation, &run.Mode, &cutoff, &run.Concurrency,
		&run.StartedAt, &finished, &run.Succeeded, &run.Skipped, &run.Failed, &run.Unsupported)
	run.StartedAt = run.StartedAt.UTC()
	run.Cutoff, run.FinishedAt = utcOf(cutoff), utcOf(finished)
	return run, err
}

// GetRun implements domain.Ledger
func (l *sqlLedger) GetRun(ctx context.Context, id string) (domain.Run, error) {
	run, err := store.One(ctx, l.q, scanRun, `SELECT `+runColumns+` FROM maintenance_runs WHERE run_id = $1`, id)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return run, perr.NotFoundf("run %s not found", id)
	case err != nil:
		return run, perr.Wrap(err, perr.ErrorCodeDB, "load run")
	}
	return run, nil
}

// RecentRuns implements domain.Ledger
func (l *sqlLedger) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := store.Many(ctx, l.q, scanRun,
		`SELECT `+runColumns+` FROM maintenance_runs ORDER BY started_at DESC, run_id DESC LIMIT $1`, limit)
	return runs, perr.WrapIf(err, perr.ErrorCodeDB, "list runs")
}

func utcOf(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
