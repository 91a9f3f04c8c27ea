package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"curator/internal/platform/config"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLite(t *testing.T) TxRunner {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQL(db)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", Placeholders(1, 1))
	assert.Equal(t, "$3, $4, $5", Placeholders(3, 3))
	assert.Equal(t, "$9, $10, $11", Placeholders(9, 3))
	assert.Equal(t, "", Placeholders(1, 0))
}

func TestSQLAdapterTxAndHelpers(t *testing.T) {
	ctx := context.Background()
	q := openLite(t)

	_, err := q.Exec(ctx, `create table kv (k text primary key, v integer not null)`)
	require.NoError(t, err)

	err = q.Tx(ctx, func(tx RowQuerier) error {
		for i, k := range []string{"a", "b", "c"} {
			if _, err := tx.Exec(ctx, `insert into kv (k, v) values ($1, $2)`, k, i); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = q.Tx(ctx, func(tx RowQuerier) error {
		_, _ = tx.Exec(ctx, `insert into kv (k, v) values ('z', 99)`)
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := Scalar[int](ctx, q, `select count(*) from kv`)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "rolled back insert must not be visible")

	keys, err := Many(ctx, q, func(r Row) (string, error) {
		var k string
		err := r.Scan(&k)
		return k, err
	}, `select k from kv where v in (`+Placeholders(1, 2)+`) order by k`, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)

	_, err = One(ctx, q, func(r Row) (string, error) {
		var k string
		err := r.Scan(&k)
		return k, err
	}, `select k from kv where v = $1`, 42)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	tag, err := q.Exec(ctx, `delete from kv where v >= $1`, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, tag.RowsAffected())
}

func TestOpenWithSQLiteAndGuard(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{SQLite: SQLiteConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "g.db")}})
	require.NoError(t, err)
	require.NotNil(t, s.Lite)
	assert.Nil(t, s.PG)
	assert.Nil(t, s.CH)
	require.NoError(t, s.Guard(ctx))
	require.NoError(t, s.Close(ctx))
}

func TestGuardNilStore(t *testing.T) {
	var s *Store
	require.Error(t, s.Guard(context.Background()))
	require.NoError(t, s.Close(context.Background()))
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CURATOR_STORE", "")
	t.Setenv("CURATOR_SQLITE_PATH", "/tmp/cat.db")
	t.Setenv("CURATOR_PG_URL", "")
	t.Setenv("CURATOR_CH_ENABLED", "")

	c, err := FromConfig(config.New(), "")
	require.NoError(t, err)
	assert.False(t, c.PG.Enabled || c.SQLite.Enabled || c.CH.Enabled)

	c, err = FromConfig(config.New(), "sqlite")
	require.NoError(t, err)
	assert.True(t, c.SQLite.Enabled)
	assert.Equal(t, "/tmp/cat.db", c.SQLite.Path)

	_, err = FromConfig(config.New(), "pg")
	assert.True(t, perr.IsFatalConfig(err))

	t.Setenv("CURATOR_PG_URL", "postgres://u@localhost/curator")
	t.Setenv("CURATOR_STORE", "PG")
	c, err = FromConfig(config.New(), "")
	require.NoError(t, err)
	assert.True(t, c.PG.Enabled)
	assert.Equal(t, int32(4), c.PG.MaxConns)

	_, err = FromConfig(config.New(), "mongo")
	assert.True(t, perr.IsFatalConfig(err))

	t.Setenv("CURATOR_CH_ENABLED", "true")
	_, err = FromConfig(config.New(), "memory")
	assert.True(t, perr.IsFatalConfig(err))
}
