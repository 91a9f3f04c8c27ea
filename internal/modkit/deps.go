// Package modkit provides module wiring and core deps
package modkit

import (
	"curator/internal/modkit/repokit"
	"curator/internal/platform/config"
	"curator/internal/platform/logger"
	"curator/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log  logger.Logger
	Cfg  config.Conf
	PG   repokit.TxRunner
	Lite repokit.TxRunner
	CH   store.Clickhouse
}

// FromStore copies the open backends of s into deps
func FromStore(log logger.Logger, cfg config.Conf, s *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if s != nil {
		d.PG, d.Lite, d.CH = s.PG, s.Lite, s.CH
	}
	return d
}

// SQL returns the relational backend modules persist to, preferring postgres over sqlite.
// ok is false when neither is open and modules should fall back to memory.
func (d Deps) SQL() (q repokit.TxRunner, dialect repokit.Dialect, ok bool) {
	switch {
	case d.PG != nil:
		return d.PG, repokit.Postgres, true
	case d.Lite != nil:
		return d.Lite, repokit.SQLite, true
	default:
		return nil, "", false
	}
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
