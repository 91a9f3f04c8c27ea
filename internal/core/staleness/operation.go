package staleness

import (
	"slices"

	"curator/internal/core/eventlog"
)

// Operation is identified by the event it appends on success
type Operation struct {
	Name string
	Tag  eventlog.Tag

	// Propagate is appended to related children after success; it specializes Tag
	Propagate eventlog.Tag

	// ExcludedKinds are entity kinds the operation never applies to
	ExcludedKinds []string

	// Requires lists events that must exist and postdate InvalidatedBy
	Requires      []eventlog.Tag
	InvalidatedBy eventlog.Tag
}

// Excludes reports whether entities of kind are categorically ineligible
func (o Operation) Excludes(kind string) bool { return slices.Contains(o.ExcludedKinds, kind) }
