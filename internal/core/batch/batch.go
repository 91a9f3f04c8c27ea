// Package batch runs independent per-entity units on a bounded pool and collects one outcome each
package batch

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency applies when RunAll is given less than one worker
const DefaultConcurrency = 4

// Status of one entity in a run
type Status string

// Outcome statuses; Unknown and Unsupported are reported by processors
const (
	Success     Status = "SUCCESS"
	Skipped     Status = "SKIPPED"
	Failed      Status = "FAILED"
	Unknown     Status = "UNKNOWN"
	Unsupported Status = "UNSUPPORTED"
)

// ParseStatus accepts any of the statuses above, case-sensitively
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case Success, Skipped, Failed, Unknown, Unsupported:
		return st, true
	}
	return "", false
}

// Outcome is produced exactly once per entity considered
type Outcome struct {
	EntityID int64
	Status   Status
	Detail   string
	Err      error
	Label    string
	Metrics  []float64
	At       time.Time
}

// Unit is the work for one entity. A nil error with a zero Outcome status means success.
type Unit struct {
	EntityID int64
	Do       func(ctx context.Context) (Outcome, error)
}

// RunAll executes units on a pool of concurrency workers and blocks until all finish.
// Outcomes come back sorted by entity id, one per unit.
func RunAll(ctx context.Context, units []Unit, concurrency int) []Outcome {
	return RunAllNotify(ctx, units, concurrency, nil)
}

// RunAllNotify is RunAll that also hands each outcome to done from the worker that
// produced it, as soon as the unit finishes
func RunAllNotify(ctx context.Context, units []Unit, concurrency int, done func(Outcome)) []Outcome {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	out := make(chan Outcome, len(units))

	// the group context is never cancelled: units report failures as outcomes, not errors
	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, u := range units {
		g.Go(func() error {
			o := runOne(ctx, u)
			if done != nil {
				done(o)
			}
			out <- o
			return nil
		})
	}
	_ = g.Wait()
	close(out)

	res := make([]Outcome, 0, len(units))
	for o := range out {
		res = append(res, o)
	}
	slices.SortStableFunc(res, func(a, b Outcome) int { return cmp.Compare(a.EntityID, b.EntityID) })
	return res
}

func runOne(ctx context.Context, u Unit) (o Outcome) {
	if err := ctx.Err(); err != nil {
		return Outcome{EntityID: u.EntityID, Status: Failed, Detail: "not started", Err: err, At: time.Now().UTC()}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Int64("entity_id", u.EntityID).Bytes("stack", debug.Stack()).Msgf("unit panicked: %v", r)
			o = Outcome{
				EntityID: u.EntityID,
				Status:   Failed,
				Detail:   fmt.Sprintf("panic: %v", r),
				Err:      perr.PanicErrf("entity %d: %v", u.EntityID, r),
				At:       time.Now().UTC(),
			}
		}
	}()

	o, err := u.Do(ctx)
	o.EntityID = u.EntityID
	if o.At.IsZero() {
		o.At = time.Now().UTC()
	}
	if err != nil {
		o.Status = Failed
		o.Err = err
		if o.Detail == "" {
			o.Detail = err.Error()
		}
		return o
	}
	if o.Status == "" {
		o.Status = Success
	}
	return o
}
