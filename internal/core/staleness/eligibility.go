package staleness

import (
	"fmt"

	"curator/internal/core/eventlog"
)

// Reason explains a skip
type Reason string

// Skip reasons, in the order ShouldRun checks them
const (
	ReasonNone           Reason = ""
	ReasonKindExcluded   Reason = "kind excluded"
	ReasonChild          Reason = "subsumed or merged into another entity"
	ReasonTroubled       Reason = "troubled"
	ReasonUpToDate       Reason = "already up to date"
	ReasonRanAfterCutoff Reason = "ran after cutoff"
	ReasonNotReady       Reason = "prerequisites not ready"
)

// Subject is what ShouldRun needs to know about an entity
type Subject struct {
	Kind        string
	Child       bool // subsumed by or merged into another entity
	Troubled    bool
	MergeParent bool // other entities are merged into this one
	History     *eventlog.Log
}

// Decision is the outcome of ShouldRun
type Decision struct {
	Run    bool
	Reason Reason
	Detail string
}

func (d Decision) String() string {
	switch {
	case d.Run:
		return "run"
	case d.Detail != "":
		return string(d.Reason) + ": " + d.Detail
	default:
		return string(d.Reason)
	}
}

func skip(r Reason, detail string) Decision { return Decision{Reason: r, Detail: detail} }

// ShouldRun rejects structurally ineligible entities before consulting NeedToRun
func ShouldRun(s Subject, op Operation, cfg RunConfig) Decision {
	if op.Excludes(s.Kind) {
		return skip(ReasonKindExcluded, fmt.Sprintf("%s does not apply to %s", op.Name, s.Kind))
	}
	if s.Child {
		return skip(ReasonChild, "")
	}
	if s.Troubled && !cfg.force {
		return skip(ReasonTroubled, "")
	}
	h := s.History
	if h == nil {
		h = &eventlog.Log{}
	}
	if !NeedToRun(h, op, cfg) {
		if cfg.hasCutoff && !cfg.autoSeek {
			last, _ := h.LastOf(op.Tag)
			return skip(ReasonRanAfterCutoff, "last run "+last.At.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return skip(ReasonUpToDate, "")
	}
	if !cfg.force && !s.MergeParent {
		if ok, why := ready(h, op); !ok {
			return skip(ReasonNotReady, why)
		}
	}
	return Decision{Run: true}
}

// ready checks that every prerequisite ran and none predates the last invalidating event
func ready(h *eventlog.Log, op Operation) (bool, string) {
	inv, hasInv := eventlog.Event{}, false
	if op.InvalidatedBy.Resolved() {
		inv, hasInv = h.LastOf(op.InvalidatedBy)
	}
	for _, req := range op.Requires {
		last, ok := h.LastOf(req)
		if !ok {
			return false, "must run " + req.Name() + " first"
		}
		if hasInv && inv.At.After(last.At) {
			return false, inv.Type.Name() + " is newer than the last " + req.Name()
		}
	}
	return true, ""
}
