//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"curator/internal/platform/store/pg/pgtest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpenAppliesPoolConfig(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	const app = "curator-pg-integration"
	p, err := Open(ctx, Config{URL: dsn, MaxConns: 2}, nil, func(pc *pgxpool.Config) {
		pc.ConnConfig.RuntimeParams["application_name"] = app
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()

	if got := p.Pool.Config().MaxConns; got != 2 {
		t.Fatalf("MaxConns = %d, want 2", got)
	}

	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `create temporary table ev (id int primary key, type text)`); err != nil {
		t.Fatalf("create temp table: %v", err)
	}
	b := &pgx.Batch{}
	b.Queue(`insert into ev (id, type) values ($1, $2)`, 1, "ArrayDesignGeneMappingEvent")
	if err := conn.SendBatch(ctx, b).Close(); err != nil {
		t.Fatalf("batch: %v", err)
	}

	type row struct {
		ID   int
		Type string
	}
	rows, err := conn.Query(ctx, `select id, type from ev order by id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].Type != "ArrayDesignGeneMappingEvent" {
		t.Fatalf("unexpected rows: %#v", got)
	}

	var gotApp string
	if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&gotApp); err != nil {
		t.Fatalf("application_name: %v", err)
	}
	if gotApp != app {
		t.Fatalf("application_name = %q, want %q", gotApp, app)
	}
}
