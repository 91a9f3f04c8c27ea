package errors

// Postgres SQLSTATE mapping for pgx errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
	sqlStateInvalidText         = "22P02"
	sqlStateSerialization       = "40001"
	sqlStateDeadlock            = "40P01"
	sqlStateLockNotAvailable    = "55P03"
	sqlStateReadOnly            = "25006"
	sqlStateCannotConnectNow    = "57P03"
	sqlStateAdminShutdown       = "57P01"
)

// PgError returns the *pgconn.PgError at the root of err
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with the given SQLSTATE
func IsSQLState(err error, state string) bool {
	pgErr, ok := PgError(err)
	return ok && pgErr.Code == state
}

// IsDuplicateKey reports a unique violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, sqlStateUniqueViolation) }

// DBErrorCode maps a postgres error to an ErrorCode; ok is false for non-postgres errors
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := PgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case sqlStateForeignKeyViolation, sqlStateInvalidText:
		return ErrorCodeInvalidArgument, true
	case sqlStateNotNullViolation, sqlStateCheckViolation:
		return ErrorCodeValidation, true
	case sqlStateReadOnly, sqlStateCannotConnectNow, sqlStateAdminShutdown:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports storage contention worth retrying.
// Local cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := PgError(err); ok {
		switch pgErr.Code {
		case sqlStateSerialization, sqlStateDeadlock, sqlStateLockNotAvailable, sqlStateCannotConnectNow:
			return true
		}
		return false
	}
	s := strings.ToLower(Root(err).Error())
	for _, frag := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"database is locked",
	} {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
