package store

import (
	"context"
	"fmt"
	"time"

	"curator/internal/platform/logger"
	chx "curator/internal/platform/store/ch"
	"curator/internal/platform/store/pg"
	"curator/internal/platform/store/sqlite"

	"github.com/cenkalti/backoff/v4"
)

// openPG opens the pool and waits for postgres to answer before publishing the adapter
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 8
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 150 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries-1)), ctx)

	attempt := 0
	ping := func() error {
		attempt++
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}
	notify := func(err error, d time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", d).Msg("store: postgres not ready")
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempt, err)
	}
	return newPGAdapter(p), nil
}

func openSQLite(ctx context.Context, cfg SQLiteConfig) (*sqlAdapter, error) {
	db, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	return newSQLAdapter(db), nil
}

func openCH(ctx context.Context, app string, cfg CHConfig) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.URL, Role: app})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
