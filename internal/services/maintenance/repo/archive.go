package repo

import (
	"context"
	_ "embed"

	"curator/internal/core/batch"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/store"
	"curator/internal/services/maintenance/domain"
)

//go:embed archive_ch.sql
var archiveDDL string

// ArchiveTable receives one row per outcome
const ArchiveTable = "curator.outcomes"

// CHArchive writes finished runs to clickhouse
type CHArchive struct {
	ch store.Clickhouse
}

// NewCHArchive returns an archive over the clickhouse seam
func NewCHArchive(ch store.Clickhouse) *CHArchive { return &CHArchive{ch: ch} }

// Ensure creates the archive table when it does not exist
func (a *CHArchive) Ensure(ctx context.Context) error {
	if err := a.ch.Exec(ctx, "CREATE DATABASE IF NOT EXISTS curator"); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "create clickhouse database")
	}
	return perr.WrapIf(a.ch.Exec(ctx, archiveDDL), perr.ErrorCodeDB, "create outcome archive")
}

// Archive implements domain.Archive in a single batch
func (a *CHArchive) Archive(ctx context.Context, r domain.Run, outcomes []batch.Outcome) error {
	rows := make([][]any, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []any{r.ID, r.Operation, o.EntityID, string(o.Status), o.Label, o.Detail, o.At.UTC()})
	}
	return perr.WrapIf(a.ch.Insert(ctx, ArchiveTable, rows), perr.ErrorCodeDB, "archive outcomes")
}
