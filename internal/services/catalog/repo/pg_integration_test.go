//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"curator/internal/core/eventlog"
	"curator/internal/modkit/repokit"
	"curator/internal/platform/store"
	"curator/internal/platform/store/pg/pgtest"
	"curator/internal/services/catalog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCatalog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, store.Config{AppName: "curator-test", PG: store.PGConfig{Enabled: true, URL: pgtest.Start(t)}})
	require.NoError(t, err)
	defer st.Close(ctx)

	require.NoError(t, Migrate(ctx, st.PG, repokit.Postgres))
	require.NoError(t, Migrate(ctx, st.PG, repokit.Postgres), "schema must be re-runnable")

	cat := NewSQL().Bind(st.PG)
	require.NoError(t, Seed(ctx, cat, fixture(t)))

	sel, err := cat.Select(ctx, domain.Filter{IDs: []int64{1, 3}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, "GPL96", sel[0].Accession)

	kids, err := cat.ChildrenOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, kids)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err = st.PG.Tx(ctx, func(q store.RowQuerier) error {
		return NewSQL().Bind(q).AppendEvent(ctx, 2, eventlog.GeneMappingByParent, "Parent GPL96 was processed (merged or subsumed by this)", at)
	})
	require.NoError(t, err)

	evs, err := cat.EventsOf(ctx, 2)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Type.Is(eventlog.GeneMapping))
	assert.True(t, evs[0].At.Equal(at))
}
