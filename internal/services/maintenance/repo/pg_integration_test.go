//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"curator/internal/core/batch"
	"curator/internal/modkit/repokit"
	"curator/internal/platform/store"
	"curator/internal/platform/store/pg/pgtest"
	"curator/internal/services/maintenance/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLedger(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, store.Config{AppName: "curator-test", PG: store.PGConfig{Enabled: true, URL: pgtest.Start(t)}})
	require.NoError(t, err)
	defer st.Close(ctx)
	require.NoError(t, Migrate(ctx, st.PG, repokit.Postgres))

	l := NewSQL().Bind(st.PG)
	id := uuid.Must(uuid.NewV7()).String()
	require.NoError(t, l.StartRun(ctx, domain.Run{ID: id, Operation: "link-analysis", Mode: "always", Concurrency: 2, StartedAt: t0}))
	require.NoError(t, l.RecordOutcome(ctx, domain.RowFrom(id, batch.Outcome{EntityID: 5, Status: batch.Success, At: t0})))

	fin := t0.Add(time.Minute)
	require.NoError(t, l.FinishRun(ctx, domain.Run{ID: id, FinishedAt: &fin, Succeeded: 1}))

	rows, err := l.Outcomes(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].EntityID)
}
