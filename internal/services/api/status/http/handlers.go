// Package http serves entity histories, staleness verdicts and run outcomes
package http

import (
	"net/http"
	"strings"
	"time"

	"curator/internal/core/batch"
	"curator/internal/core/eventlog"
	"curator/internal/core/staleness"
	"curator/internal/modkit/httpkit"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/net/http/bind"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
	mservice "curator/internal/services/maintenance/service"
)

// Deps are the handler dependencies
type Deps struct {
	Catalog catalog.Catalog
	Ledger  domain.Ledger
	Now     func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the status routes on r, which is expected to be the /v1 router
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/entities/{id}", h.entity)
	httpkit.Get(r, "/entities/{id}/events", h.events)
	httpkit.GetQuery(r, "/entities/{id}/staleness", h.staleness)

	httpkit.GetQuery(r, "/runs", h.runs)
	httpkit.Get(r, "/runs/{runID}", h.run)
	httpkit.GetQuery(r, "/runs/{runID}/outcomes", h.outcomes)
}

// EntityResponse is an entity with its effective troubled state
type EntityResponse struct {
	catalog.Entity
	TroubledNow bool `json:"troubled_now"`
	Events      int  `json:"events"`
}

func (h *handlers) entity(r *http.Request) (any, error) {
	id, err := bind.PathInt64(r, "id")
	if err != nil {
		return nil, err
	}
	e, err := h.deps.Catalog.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	evs, err := h.deps.Catalog.EventsOf(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return EntityResponse{Entity: e, TroubledNow: catalog.Troubled(e, eventlog.FromEvents(evs)), Events: len(evs)}, nil
}

func (h *handlers) events(r *http.Request) (any, error) {
	id, err := bind.PathInt64(r, "id")
	if err != nil {
		return nil, err
	}
	if _, err := h.deps.Catalog.Get(r.Context(), id); err != nil {
		return nil, err
	}
	evs, err := h.deps.Catalog.EventsOf(r.Context(), id)
	if err != nil {
		return nil, err
	}
	out := eventlog.FromEvents(evs).Events()
	if out == nil {
		out = []eventlog.Event{}
	}
	return out, nil
}

type stalenessQuery struct {
	Operation string `query:"operation" json:"operation" validate:"required"`
	Auto      bool   `query:"auto" json:"auto"`
	Cutoff    string `query:"cutoff" json:"cutoff"`
	Force     bool   `query:"force" json:"force"`
}

func (h *handlers) staleness(r *http.Request, q stalenessQuery) (any, error) {
	id, err := bind.PathInt64(r, "id")
	if err != nil {
		return nil, err
	}
	cut, err := staleness.ParseCutoff(h.deps.Now(), q.Cutoff)
	if err != nil {
		return nil, perr.WithField(err, "cutoff")
	}
	return mservice.Explain(r.Context(), h.deps.Catalog, id, q.Operation, staleness.Options{
		Force:    q.Force,
		AutoSeek: q.Auto,
		Cutoff:   cut,
	})
}

type runsQuery struct {
	Limit int `query:"limit" json:"limit" validate:"min=0,max=200"`
}

func (h *handlers) runs(r *http.Request, q runsQuery) (any, error) {
	runs, err := h.deps.Ledger.RecentRuns(r.Context(), q.Limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	return runs, nil
}

func (h *handlers) run(r *http.Request) (any, error) {
	id, err := bind.PathString(r, "runID")
	if err != nil {
		return nil, err
	}
	return h.deps.Ledger.GetRun(r.Context(), id)
}

type outcomesQuery struct {
	Status []string `query:"status" json:"status"`
	Offset int      `query:"offset" json:"offset" validate:"min=0"`
	Limit  int      `query:"limit" json:"limit" validate:"min=0,max=1000"`
}

func (h *handlers) outcomes(r *http.Request, q outcomesQuery) (any, error) {
	id, err := bind.PathString(r, "runID")
	if err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, s := range q.Status {
		st, ok := batch.ParseStatus(strings.ToUpper(s))
		if !ok {
			return nil, perr.WithField(perr.InvalidArgf("unknown status %q", s), "status")
		}
		want[string(st)] = true
	}
	if _, err := h.deps.Ledger.GetRun(r.Context(), id); err != nil {
		return nil, err
	}
	rows, err := h.deps.Ledger.Outcomes(r.Context(), id)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.OutcomeRow, 0, len(rows))
	for _, o := range rows {
		if len(want) == 0 || want[o.Status] {
			kept = append(kept, o)
		}
	}
	limit := q.Limit
	if limit == 0 {
		limit = 100
	}
	total := len(kept)
	lo := min(q.Offset, total)
	hi := min(lo+limit, total)
	return httpkit.List(kept[lo:hi], httpkit.Page{Total: total, Offset: lo, Limit: limit}), nil
}
