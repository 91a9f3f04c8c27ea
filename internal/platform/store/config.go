package store

import (
	"strings"
	"time"

	"curator/internal/platform/config"
	perr "curator/internal/platform/errors"
)

// Config selects and configures backends
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
	CH     CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // ping attempts before giving up, default 8
	PingTimeout    time.Duration // per attempt, default 3s
}

// SQLiteConfig configures the local catalog file
type SQLiteConfig struct {
	Enabled bool
	Path    string
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
}

// Backend kinds accepted by CURATOR_STORE
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindPG     = "pg"
)

// FromConfig builds a Config from CURATOR_*; kind, when set, wins over CURATOR_STORE.
// Memory enables no relational backend; clickhouse is independent of kind.
func FromConfig(cfg config.Conf, kind string) (Config, error) {
	c := cfg.Prefix("CURATOR_")
	if kind == "" {
		kind = c.MayString("STORE", KindMemory)
	}
	out := Config{AppName: "curator"}
	switch strings.ToLower(kind) {
	case KindMemory:
	case KindSQLite:
		out.SQLite = SQLiteConfig{Enabled: true, Path: c.MayString("SQLITE_PATH", "curator.db")}
	case KindPG:
		pgc := c.Prefix("PG_")
		if !pgc.Has("URL") {
			return Config{}, perr.FatalConfigf("CURATOR_PG_URL is required when the store is pg")
		}
		out.PG = PGConfig{
			Enabled:     true,
			URL:         pgc.MayString("URL", ""),
			MaxConns:    int32(pgc.MayInt("MAX_CONNS", 4)),
			LogSQL:      pgc.MayBool("LOG_SQL", false),
			SlowQueryMs: pgc.MayInt("SLOW_MS", 500),
		}
	default:
		return Config{}, perr.FatalConfigf("unknown store %q (want memory, sqlite or pg)", kind)
	}
	chc := c.Prefix("CH_")
	if chc.MayBool("ENABLED", false) {
		if !chc.Has("URL") {
			return Config{}, perr.FatalConfigf("CURATOR_CH_URL is required when clickhouse is enabled")
		}
		out.CH = CHConfig{Enabled: true, URL: chc.MayString("URL", "")}
	}
	return out, nil
}
