package modkit

import (
	"context"
	"testing"

	"curator/internal/modkit/repokit"
	"curator/internal/platform/config"
	"curator/internal/platform/store"

	"github.com/rs/zerolog"
)

type fakeTx struct{ store.RowQuerier }

func (fakeTx) Tx(context.Context, func(store.RowQuerier) error) error { return nil }

func TestDeps_ZeroValue_IsOK(t *testing.T) {
	t.Parallel()
	var d Deps // zero value across all fields
	if !d.ZeroOK() {
		t.Fatal("zero-value Deps should be safe in tests (ZeroOK == true)")
	}
	if _, _, ok := d.SQL(); ok {
		t.Fatal("zero-value Deps should have no sql backend")
	}
}

func TestDeps_SQLPrefersPostgres(t *testing.T) {
	t.Parallel()

	pg, lite := &fakeTx{}, &fakeTx{}
	d := FromStore(zerolog.Nop(), config.New(), &store.Store{PG: pg, Lite: lite})
	q, dialect, ok := d.SQL()
	if !ok || dialect != repokit.Postgres || q != pg {
		t.Fatalf("SQL() = %v %v %v, want postgres", q, dialect, ok)
	}

	d = FromStore(zerolog.Nop(), config.New(), &store.Store{Lite: lite})
	q, dialect, ok = d.SQL()
	if !ok || dialect != repokit.SQLite || q != lite {
		t.Fatalf("SQL() = %v %v %v, want sqlite", q, dialect, ok)
	}

	if d := FromStore(zerolog.Nop(), config.New(), nil); d.PG != nil || d.Lite != nil || d.CH != nil {
		t.Fatal("nil store should give empty backends")
	}
}
