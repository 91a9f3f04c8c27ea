// Package eventlog holds the per-entity event history and the closed event type taxonomy
package eventlog

import (
	"fmt"
	"strings"
)

// Group is a set of supertype groups; an event type belongs to zero or more
type Group uint16

const (
	// GroupPlatformAnalysis covers analyses run on a platform (array design)
	GroupPlatformAnalysis Group = 1 << iota
	// GroupExperimentAnalysis covers analyses run on an experiment
	GroupExperimentAnalysis
	// GroupCuration covers curation marks that are not analyses
	GroupCuration
)

// Overlaps reports whether g and o share a group
func (g Group) Overlaps(o Group) bool { return g&o != 0 }

func (g Group) String() string {
	var parts []string
	for _, n := range []struct {
		g    Group
		name string
	}{
		{GroupPlatformAnalysis, "platform-analysis"},
		{GroupExperimentAnalysis, "experiment-analysis"},
		{GroupCuration, "curation"},
	} {
		if g&n.g != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Tag identifies an event type. The zero Tag is unresolved: a stored type name that is not
// in the taxonomy. Unresolved tags belong to no group and match nothing.
type Tag struct{ id uint16 }

type tagDef struct {
	name   string
	groups Group
	parent uint16
}

var (
	defs   = []tagDef{{name: ""}}
	byName = map[string]Tag{}
)

func define(name string, groups Group) Tag {
	if _, dup := byName[name]; dup {
		panic("eventlog: duplicate tag " + name)
	}
	t := Tag{id: uint16(len(defs))}
	defs = append(defs, tagDef{name: name, groups: groups})
	byName[name] = t
	return t
}

// specialize defines a subtype of parent: it inherits parent's groups and matches parent in exact-type checks
func specialize(parent Tag, name string) Tag {
	t := define(name, parent.Groups())
	defs[t.id].parent = parent.id
	return t
}

// Lookup resolves a stored type name; unknown names give the unresolved Tag
func Lookup(name string) Tag { return byName[name] }

// Tags lists every defined tag in definition order
func Tags() []Tag {
	out := make([]Tag, 0, len(defs)-1)
	for i := 1; i < len(defs); i++ {
		out = append(out, Tag{id: uint16(i)})
	}
	return out
}

// Name is the stable stored name
func (t Tag) Name() string { return defs[t.id].name }

// Groups returns the supertype groups t belongs to
func (t Tag) Groups() Group { return defs[t.id].groups }

// Resolved reports whether t is a known type
func (t Tag) Resolved() bool { return t.id != 0 }

// Parent returns the tag t specializes, or the unresolved tag
func (t Tag) Parent() Tag { return Tag{id: defs[t.id].parent} }

// Is reports whether t is exactly op or a specialization of op
func (t Tag) Is(op Tag) bool {
	if !t.Resolved() || !op.Resolved() {
		return false
	}
	return t == op || t.Parent() == op
}

// SharesGroup reports whether t belongs to any of op's supertype groups
func (t Tag) SharesGroup(op Tag) bool { return t.Groups().Overlaps(op.Groups()) }

func (t Tag) String() string {
	if !t.Resolved() {
		return "<unresolved>"
	}
	return t.Name()
}

// MarshalText stores the tag by name
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.Name()), nil }

// UnmarshalText resolves a stored name; unknown names decode to the unresolved tag
func (t *Tag) UnmarshalText(b []byte) error {
	*t = Lookup(strings.TrimSpace(string(b)))
	return nil
}

// MustLookup resolves name or returns an error naming the known tags
func MustLookup(name string) (Tag, error) {
	t := Lookup(name)
	if !t.Resolved() {
		return t, fmt.Errorf("unknown event type %q", name)
	}
	return t, nil
}
