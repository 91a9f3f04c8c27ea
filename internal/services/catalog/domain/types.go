// Package domain defines the catalog's entities and the ports the maintenance engine reads them through
package domain

import (
	"time"

	"curator/internal/core/eventlog"
)

// Entity kinds used for eligibility
const (
	KindOneColor   = "ONECOLOR"
	KindTwoColor   = "TWOCOLOR"
	KindSequencing = "SEQUENCING"
	KindNone       = "NONE"
)

// Entity is one catalog item. SubsumedBy and MergedInto point at its parent, if any.
type Entity struct {
	ID         int64  `json:"id" yaml:"id"`
	Accession  string `json:"accession" yaml:"accession"`
	Kind       string `json:"kind" yaml:"kind"`
	SubsumedBy *int64 `json:"subsumed_by,omitempty" yaml:"subsumed_by,omitempty"`
	MergedInto *int64 `json:"merged_into,omitempty" yaml:"merged_into,omitempty"`
	Troubled   bool   `json:"troubled" yaml:"troubled"`
}

// IsChild reports whether e is subsumed by or merged into another entity
func (e Entity) IsChild() bool { return e.SubsumedBy != nil || e.MergedInto != nil }

// Filter selects candidates; an empty filter selects everything
type Filter struct {
	IDs   []int64
	Kinds []string
	Limit int
}

// NewEvent is an event waiting to be appended
type NewEvent struct {
	EntityID int64
	Type     eventlog.Tag
	Note     string
	At       time.Time
}

// Troubled resolves the effective flag: the latest Troubled or NotTroubled mark wins over
// the stored flag
func Troubled(e Entity, h *eventlog.Log) bool {
	if h == nil {
		return e.Troubled
	}
	on, hasOn := h.LastOf(eventlog.Troubled)
	off, hasOff := h.LastOf(eventlog.NotTroubled)
	switch {
	case hasOn && (!hasOff || on.At.After(off.At)):
		return true
	case hasOff:
		return false
	}
	return e.Troubled
}
