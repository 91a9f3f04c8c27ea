package repo

import (
	"context"
	_ "embed"

	"curator/internal/modkit/repokit"
)

var (
	//go:embed schema_pg.sql
	schemaPG string
	//go:embed schema_sqlite.sql
	schemaSQLite string
)

// Schema holds the catalog tables
var Schema = repokit.Schema{Name: "catalog", PG: schemaPG, SQLite: schemaSQLite}

// Migrate creates the catalog tables if they are missing
func Migrate(ctx context.Context, q repokit.Queryer, d repokit.Dialect) error {
	return Schema.Apply(ctx, q, d)
}
