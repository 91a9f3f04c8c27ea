package service

import (
	"context"
	"time"
)

// remaining is the time left before ctx's deadline, or zero without one
func remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withUnitTimeout bounds one unit by d without ever extending the parent deadline.
// Zero d still returns a cancelable child.
func withUnitTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
