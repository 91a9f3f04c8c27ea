package staleness

import "curator/internal/core/eventlog"

// NeedToRun applies the first matching rule: force, auto recency, no cutoff, cutoff
func NeedToRun(h *eventlog.Log, op Operation, cfg RunConfig) bool {
	if h == nil {
		h = &eventlog.Log{}
	}
	switch {
	case cfg.force:
		return true
	case cfg.autoSeek:
		return autoRecency(h, op.Tag)
	case !cfg.hasCutoff:
		return true
	}
	last, ok := h.LastOf(op.Tag)
	if !ok {
		return true
	}
	return last.At.Before(cfg.cutoff)
}

// autoRecency is stale when the operation never ran, or when another event of the
// operation's groups landed strictly after its last run. Unresolved events are ignored.
func autoRecency(h *eventlog.Log, op eventlog.Tag) bool {
	last, ok := h.LastOf(op)
	if !ok {
		return true
	}
	if latest, ok := h.Latest(); ok && latest.Type.Is(op) {
		return false
	}
	newer := false
	h.Scan(func(e eventlog.Event) bool {
		if !e.At.After(last.At) {
			return false
		}
		if e.Type.Resolved() && !e.Type.Is(op) && e.Type.SharesGroup(op) {
			newer = true
			return false
		}
		return true
	})
	return newer
}
