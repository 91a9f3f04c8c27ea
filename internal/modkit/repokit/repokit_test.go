package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/store"
)

// recorder keeps the trimmed statements it was asked to run and fails on one containing failOn
type recorder struct {
	store.RowQuerier
	stmts  []string
	failOn string
}

func (r *recorder) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	sql = strings.TrimSpace(sql)
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return nil, errors.New("syntax error")
	}
	r.stmts = append(r.stmts, sql)
	return nil, nil
}

var testSchema = Schema{
	Name:   "test",
	PG:     "CREATE TABLE a (id BIGINT);\n\nCREATE INDEX a_id ON a (id);\n",
	SQLite: "CREATE TABLE a (id INTEGER);",
}

func TestSchemaApplyPicksDialect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    Dialect
		want []string
	}{
		{Postgres, []string{"CREATE TABLE a (id BIGINT)", "CREATE INDEX a_id ON a (id)"}},
		{SQLite, []string{"CREATE TABLE a (id INTEGER)"}},
	}
	for _, tc := range cases {
		r := &recorder{}
		if err := testSchema.Apply(context.Background(), r, tc.d); err != nil {
			t.Fatalf("%s: %v", tc.d, err)
		}
		if strings.Join(r.stmts, "|") != strings.Join(tc.want, "|") {
			t.Fatalf("%s: ran %q, want %q", tc.d, r.stmts, tc.want)
		}
	}
}

func TestSchemaApplyStopsOnError(t *testing.T) {
	t.Parallel()

	r := &recorder{failOn: "INDEX"}
	err := testSchema.Apply(context.Background(), r, Postgres)
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("want db error, got %v", err)
	}
	if !strings.Contains(err.Error(), "apply test schema") {
		t.Fatalf("error should name the schema: %v", err)
	}
	if len(r.stmts) != 1 {
		t.Fatalf("statements after the failure should not run: %q", r.stmts)
	}
}

func TestBindFunc(t *testing.T) {
	t.Parallel()

	var got Queryer
	b := BindFunc[string](func(q Queryer) string {
		got = q
		return "bound"
	})
	q := &recorder{}
	if v := b.Bind(q); v != "bound" || got != q {
		t.Fatalf("Bind = %q, saw %v", v, got)
	}
}
