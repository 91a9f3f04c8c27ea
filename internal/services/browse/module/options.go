package module

import (
	"time"

	"curator/internal/core/paginate"
	"curator/internal/core/retry"
	"curator/internal/platform/config"
)

// Options holds remote listing settings read from CURATOR_REMOTE_*
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Chunk      int
	MaxEmpty   int
	MaxRetries int
	RetryDelay time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CURATOR_REMOTE_")
	return Options{
		BaseURL:    rf.MayString("BASE_URL", ""),
		Token:      rf.MayString("TOKEN", ""),
		Timeout:    rf.MayDuration("TIMEOUT", 30*time.Second),
		Chunk:      rf.MayInt("CHUNK", paginate.DefaultChunk),
		MaxEmpty:   rf.MayInt("MAX_EMPTY", paginate.DefaultMaxEmpty),
		MaxRetries: rf.MayInt("MAX_RETRIES", retry.Default.MaxAttempts),
		RetryDelay: rf.MayDuration("RETRY_DELAY", retry.Default.Delay),
	}
}

// ScanOptions converts o into paginate options
func (o Options) ScanOptions() paginate.Options {
	return paginate.Options{
		Chunk:    o.Chunk,
		MaxEmpty: o.MaxEmpty,
		Retry:    retry.Policy{MaxAttempts: o.MaxRetries, Delay: o.RetryDelay, Linear: true},
	}
}
