// Package retry runs a call again on transient failures with a bounded attempt count
package retry

import (
	"context"
	"time"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retried call; MaxAttempts counts the first try
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Linear      bool // Delay × attempt; otherwise exponential from Delay
}

// Default is five attempts with a linear 500ms step
var Default = Policy{MaxAttempts: 5, Delay: 500 * time.Millisecond, Linear: true}

type linear struct {
	step time.Duration
	n    int
}

func (l *linear) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.step
}

func (l *linear) Reset() { l.n = 0 }

func (p Policy) backoff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if p.Linear {
		b = &linear{step: p.Delay}
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Delay
		eb.MaxElapsedTime = 0
		b = eb
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, returns a non-transient error, or the attempts run out.
// Exhaustion is reported as "too many failures" with the Unavailable code.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err != nil && !perr.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, next time.Duration) {
		logger.C(ctx).Warn().Err(err).Int("attempt", attempt).Dur("next", next).Msg("retrying after transient failure")
	}

	v, err := backoff.RetryNotifyWithData(op, p.backoff(ctx), notify)
	switch {
	case err == nil:
		return v, nil
	case ctx.Err() != nil:
		return v, perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "retry cancelled")
	case perr.IsTransient(err):
		return v, perr.Wrapf(err, perr.ErrorCodeUnavailable, "too many failures after %d attempts", attempt)
	default:
		return v, err
	}
}
