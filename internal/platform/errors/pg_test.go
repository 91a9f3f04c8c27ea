package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) error { return &pgconn.PgError{Code: code} }

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		state string
		want  ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"25006", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"40001", ErrorCodeDB},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pgErr(c.state))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.state, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("plain")); ok {
		t.Fatalf("plain error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil in, nil out")
	}
	err := FromPostgresf(fmt.Errorf("exec: %w", pgErr("23505")), "append event %d", 7)
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey through wrap = false")
	}
	if CodeOf(FromPostgres(stderrs.New("conn closed"), "x")) != ErrorCodeDB {
		t.Fatalf("non-pg errors map to DB")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, false},
		{pgErr("40001"), true},
		{pgErr("40P01"), true},
		{pgErr("55P03"), true},
		{pgErr("23505"), false},
		{stderrs.New("commit unexpectedly resulted in rollback"), true},
		{stderrs.New("syntax error"), false},
	}
	for i, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("case %d: IsRetryable(%v) = %v, want %v", i, c.err, got, c.want)
		}
	}
}
