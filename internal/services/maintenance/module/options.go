package module

import (
	"time"

	"curator/internal/core/batch"
	"curator/internal/platform/config"
	"curator/internal/services/maintenance/domain"
)

// Options holds run defaults read from CURATOR_RUN_*
type Options struct {
	Concurrency    int
	UnitTimeout    time.Duration
	RetryStatuses  []batch.Status
	ReportFailures int
	Archive        bool
	Migrate        bool
}

// FromConfig reads configuration settings from the config.Conf; unknown retry statuses are dropped
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CURATOR_RUN_")
	o := Options{
		Concurrency:    rf.MayInt("CONCURRENCY", 0),
		UnitTimeout:    rf.MayDuration("UNIT_TIMEOUT", 0),
		ReportFailures: rf.MayInt("REPORT_FAILURES", 10),
		Archive:        rf.MayBool("ARCHIVE", true),
		Migrate:        cfg.Prefix("CURATOR_").MayBool("MIGRATE", true),
	}
	for _, s := range rf.MayCSV("RETRY_STATUSES", nil) {
		if st, ok := batch.ParseStatus(s); ok {
			o.RetryStatuses = append(o.RetryStatuses, st)
		}
	}
	return o
}

// Apply fills the zero fields of req from o; flags already set on req win
func (o Options) Apply(req domain.Request) domain.Request {
	if req.Staleness.Concurrency == 0 {
		req.Staleness.Concurrency = o.Concurrency
	}
	if req.UnitTimeout == 0 {
		req.UnitTimeout = o.UnitTimeout
	}
	if len(req.Summary.RetryStatuses) == 0 {
		req.Summary.RetryStatuses = o.RetryStatuses
	}
	return req
}
