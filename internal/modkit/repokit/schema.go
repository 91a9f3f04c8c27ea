package repokit

import (
	"context"
	"strings"

	perr "curator/internal/platform/errors"
)

// Schema is one module's DDL in both dialects. Statements must be idempotent.
type Schema struct {
	Name   string
	PG     string
	SQLite string
}

// Apply runs the script for d statement by statement
func (s Schema) Apply(ctx context.Context, q Queryer, d Dialect) error {
	src := s.PG
	if d == SQLite {
		src = s.SQLite
	}
	for _, stmt := range strings.Split(src, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "apply %s schema", s.Name)
		}
	}
	return nil
}
