package service

import (
	"context"
	"time"

	"curator/internal/core/eventlog"
	"curator/internal/core/relations"
	"curator/internal/core/staleness"
	perr "curator/internal/platform/errors"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// Verdict is the decision a run would make for one entity right now
type Verdict struct {
	EntityID   int64      `json:"entity_id"`
	Accession  string     `json:"accession"`
	Operation  string     `json:"operation"`
	Mode       string     `json:"mode"`
	Run        bool       `json:"run"`
	Reason     string     `json:"reason,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastRunVia int64      `json:"last_run_via,omitempty"` // parent whose run is newer than the entity's own
}

func subjectOf(e catalog.Entity, evs []eventlog.Event, ix *relations.Index) staleness.Subject {
	h := eventlog.FromEvents(evs)
	return staleness.Subject{
		Kind:        e.Kind,
		Child:       e.IsChild(),
		Troubled:    catalog.Troubled(e, h),
		MergeParent: ix.IsMergeParent(e.ID),
		History:     h,
	}
}

// Explain evaluates operation for entity id without processing or recording anything
func Explain(ctx context.Context, cat catalog.Catalog, id int64, operation string, o staleness.Options) (Verdict, error) {
	op, err := domain.Operation(operation)
	if err != nil {
		return Verdict{}, perr.WithField(perr.InvalidArgf("unknown operation %q", operation), "operation")
	}
	cfg, err := staleness.NewRunConfig(o)
	if err != nil {
		return Verdict{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid staleness options")
	}
	e, err := cat.Get(ctx, id)
	if err != nil {
		return Verdict{}, err
	}
	evs, err := cat.EventsOf(ctx, id)
	if err != nil {
		return Verdict{}, err
	}
	nodes, err := cat.Nodes(ctx)
	if err != nil {
		return Verdict{}, err
	}
	ix, err := relations.Build(nodes)
	if err != nil {
		return Verdict{}, perr.Wrap(err, perr.ErrorCodeDB, "catalog relations")
	}

	sub := subjectOf(e, evs, ix)
	d := staleness.ShouldRun(sub, op, cfg)
	v := Verdict{
		EntityID:  e.ID,
		Accession: e.Accession,
		Operation: op.Name,
		Mode:      cfg.Mode(),
		Run:       d.Run,
		Reason:    string(d.Reason),
		Detail:    d.Detail,
	}
	last, via, ok, err := lastRun(ctx, cat, ix, e.ID, sub.History, op.Tag)
	if err != nil {
		return Verdict{}, err
	}
	if ok {
		at := last.At.UTC()
		v.LastRun, v.LastRunVia = &at, via
	}
	return v, nil
}

// lastRun is the newest tag event of id or of a direct parent. A child shares the
// results of the entity it was subsumed by or merged into, so a newer parent run wins.
func lastRun(ctx context.Context, cat catalog.EventStore, ix *relations.Index, id int64, h *eventlog.Log, tag eventlog.Tag) (eventlog.Event, int64, bool, error) {
	last, ok := h.LastOf(tag)
	var via int64
	for _, pid := range ix.ParentsOf(id) {
		evs, err := cat.EventsOf(ctx, pid)
		if err != nil {
			return eventlog.Event{}, 0, false, err
		}
		pl, pok := eventlog.FromEvents(evs).LastOf(tag)
		if pok && (!ok || pl.At.After(last.At)) {
			last, via, ok = pl, pid, true
		}
	}
	return last, via, ok, nil
}
