// Package store opens curator's storage backends behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"curator/internal/platform/logger"
)

// Store holds whichever backends were enabled; nil fields are disabled
type Store struct {
	Log logger.Logger

	// PG is the postgres seam
	PG TxRunner

	// Lite is the sqlite seam, used for local catalog files
	Lite TxRunner

	// CH is the clickhouse seam for the outcome archive
	CH Clickhouse
}

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is an iterable result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write did
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam: batch inserts and reads
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is a backend that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Option mutates a Store during Open
type Option func(*Store) error

// WithLogger sets the logger handed to backend tracers
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Open connects every backend enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		pg, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = pg
	}
	if cfg.SQLite.Enabled {
		lite, err := openSQLite(ctx, cfg.SQLite)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Lite = lite
	}
	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg.AppName, cfg.CH)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = ch
	}
	return s, nil
}

// Guard pings every open backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "sqlite": s.Lite, "clickhouse": s.CH} {
		p, ok := b.(Pinger)
		if !ok || p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	for _, b := range []any{s.PG, s.Lite} {
		if c, ok := b.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
