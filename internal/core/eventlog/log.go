package eventlog

import (
	"slices"
	"sort"
	"time"
)

// Event is one entry of an entity's history
type Event struct {
	Type Tag       `json:"type" yaml:"type"`
	At   time.Time `json:"at" yaml:"at"`
	Note string    `json:"note,omitempty" yaml:"note,omitempty"`
}

// Log is an append-only history ordered by timestamp, ties kept in insertion order
type Log struct {
	events []Event
}

// FromEvents builds a log from stored events in insertion order
func FromEvents(events []Event) *Log {
	l := &Log{events: slices.Clone(events)}
	sort.SliceStable(l.events, func(i, j int) bool { return l.events[i].At.Before(l.events[j].At) })
	return l
}

// Append adds e after every event with a timestamp not after e.At
func (l *Log) Append(e Event) {
	i := sort.Search(len(l.events), func(i int) bool { return l.events[i].At.After(e.At) })
	l.events = slices.Insert(l.events, i, e)
}

// Len returns the number of events
func (l *Log) Len() int { return len(l.events) }

// Events returns a copy of the ordered history
func (l *Log) Events() []Event { return slices.Clone(l.events) }

// LastOf returns the most recent event whose type is op or a specialization of op
func (l *Log) LastOf(op Tag) (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type.Is(op) {
			return l.events[i], true
		}
	}
	return Event{}, false
}

// Latest returns the most recent event with a resolved type
func (l *Log) Latest() (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type.Resolved() {
			return l.events[i], true
		}
	}
	return Event{}, false
}

// Scan calls fn on each event from newest to oldest until fn returns false
func (l *Log) Scan(fn func(Event) bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if !fn(l.events[i]) {
			return
		}
	}
}
