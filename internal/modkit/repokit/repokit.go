// Package repokit holds the seams sql repos are written against and the schema bootstrap they share
package repokit

import "curator/internal/platform/store"

// Queryer is the read and write surface repos use; postgres and sqlite both satisfy it
type Queryer = store.RowQuerier

// TxRunner is a Queryer that can also open a transaction
type TxRunner = store.TxRunner

// Binder binds a repo implementation to a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// Dialect picks the schema flavour of a sql backend
type Dialect string

// Supported dialects. Statements use $N placeholders on both.
const (
	Postgres Dialect = "pg"
	SQLite   Dialect = "sqlite"
)
