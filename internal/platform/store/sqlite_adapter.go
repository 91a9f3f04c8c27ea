package store

import (
	"context"
	"database/sql"
)

// sqlConn is what both *sql.DB and *sql.Tx offer
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlQuerier struct{ conn sqlConn }

func (q sqlQuerier) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	res, err := q.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return sqlTag(n), nil
}

func (q sqlQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rs, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rs}, nil
}

func (q sqlQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return q.conn.QueryRowContext(ctx, query, args...)
}

// sqlAdapter exposes a database/sql handle as a TxRunner
type sqlAdapter struct {
	sqlQuerier
	db *sql.DB
}

func newSQLAdapter(db *sql.DB) *sqlAdapter {
	return &sqlAdapter{sqlQuerier: sqlQuerier{conn: db}, db: db}
}

// NewSQL wraps an already open database/sql handle; tests use it with throwaway sqlite files
func NewSQL(db *sql.DB) TxRunner { return newSQLAdapter(db) }

func (a *sqlAdapter) Ping(ctx context.Context) error { return a.db.PingContext(ctx) }

func (a *sqlAdapter) Close() error { return a.db.Close() }

func (a *sqlAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlQuerier{conn: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlTag int64

func (t sqlTag) RowsAffected() int64 { return int64(t) }

type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool            { return x.r.Next() }
func (x sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqlRows) Err() error            { return x.r.Err() }
func (x sqlRows) Close()                { _ = x.r.Close() }
