// Package staleness decides whether an operation has to run again for an entity
package staleness

import (
	"fmt"
	"time"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/validate"
)

// DefaultConcurrency is used when Options.Concurrency is left at zero
const DefaultConcurrency = 4

// Options is the mutable input RunConfig is built from, usually straight from flags
type Options struct {
	Force       bool       `flag:"force"`
	AutoSeek    bool       `flag:"auto" validate:"excluded_with=Cutoff"`
	Cutoff      *time.Time `flag:"cutoff"`
	Concurrency int        `flag:"concurrency" validate:"min=0,max=256"`
}

// RunConfig is fixed for the whole invocation and passed explicitly to every decision
type RunConfig struct {
	force       bool
	autoSeek    bool
	hasCutoff   bool
	cutoff      time.Time
	concurrency int
}

// NewRunConfig validates o; a bad combination is a fatal configuration error
func NewRunConfig(o Options) (RunConfig, error) {
	if err := validate.Struct(o); err != nil {
		return RunConfig{}, perr.Wrap(err, perr.ErrorCodeFatalConfig, "invalid run configuration")
	}
	c := RunConfig{
		force:       o.Force,
		autoSeek:    o.AutoSeek,
		concurrency: o.Concurrency,
	}
	if o.Cutoff != nil && !o.Cutoff.IsZero() {
		c.hasCutoff = true
		c.cutoff = *o.Cutoff
	}
	if c.concurrency == 0 {
		c.concurrency = DefaultConcurrency
	}
	return c, nil
}

// MustRunConfig is NewRunConfig for literals known to be valid
func MustRunConfig(o Options) RunConfig {
	c, err := NewRunConfig(o)
	if err != nil {
		panic(err)
	}
	return c
}

// Force reports whether staleness checks are bypassed
func (c RunConfig) Force() bool { return c.force }

// AutoSeek reports whether staleness is inferred from event recency
func (c RunConfig) AutoSeek() bool { return c.autoSeek }

// Cutoff returns the limiting date, if one was given
func (c RunConfig) Cutoff() (time.Time, bool) { return c.cutoff, c.hasCutoff }

// Concurrency is the worker pool size
func (c RunConfig) Concurrency() int { return c.concurrency }

// Mode names the rule NeedToRun will apply, for logs and the run ledger
func (c RunConfig) Mode() string {
	switch {
	case c.force:
		return "force"
	case c.autoSeek:
		return "auto"
	case c.hasCutoff:
		return "cutoff"
	default:
		return "always"
	}
}

func (c RunConfig) String() string {
	s := fmt.Sprintf("mode=%s concurrency=%d", c.Mode(), c.concurrency)
	if c.hasCutoff {
		s += " cutoff=" + c.cutoff.Format(time.RFC3339)
	}
	return s
}
