// Package relations indexes the subsumed-by and merged-into forests between entities
package relations

import (
	"slices"

	perr "curator/internal/platform/errors"
)

// Node is one entity's parent pointers; either may be nil
type Node struct {
	ID         int64
	SubsumedBy *int64
	MergedInto *int64
}

// Index holds parent pointers and the reverse child lists for both relation kinds
type Index struct {
	parents  map[int64]Node
	children map[int64][]int64
}

// Build indexes nodes and rejects duplicate ids, self references and cycles
func Build(nodes []Node) (*Index, error) {
	ix := &Index{
		parents:  make(map[int64]Node, len(nodes)),
		children: make(map[int64][]int64),
	}
	for _, n := range nodes {
		if _, dup := ix.parents[n.ID]; dup {
			return nil, perr.InvalidArgf("relations: duplicate entity %d", n.ID)
		}
		ix.parents[n.ID] = n
	}
	for _, n := range nodes {
		for _, p := range []*int64{n.SubsumedBy, n.MergedInto} {
			if p == nil {
				continue
			}
			if *p == n.ID {
				return nil, perr.InvalidArgf("relations: entity %d is its own parent", n.ID)
			}
			if !slices.Contains(ix.children[*p], n.ID) {
				ix.children[*p] = append(ix.children[*p], n.ID)
			}
		}
	}
	for id := range ix.children {
		slices.Sort(ix.children[id])
	}
	if err := ix.checkAcyclic(); err != nil {
		return nil, err
	}
	return ix, nil
}

// checkAcyclic walks up from every node with a three-colour dfs over both parent kinds
func (ix *Index) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	state := make(map[int64]int, len(ix.parents))

	var visit func(id int64) error
	visit = func(id int64) error {
		switch state[id] {
		case grey:
			return perr.InvalidArgf("relations: cycle through entity %d", id)
		case black:
			return nil
		}
		state[id] = grey
		n := ix.parents[id]
		for _, p := range []*int64{n.SubsumedBy, n.MergedInto} {
			if p == nil {
				continue
			}
			if err := visit(*p); err != nil {
				return err
			}
		}
		state[id] = black
		return nil
	}

	ids := make([]int64, 0, len(ix.parents))
	for id := range ix.parents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// ChildrenOf returns the sorted direct children of id across both relation kinds
func (ix *Index) ChildrenOf(id int64) []int64 {
	return slices.Clone(ix.children[id])
}

// RelatedOf is ChildrenOf; kept as the name the propagator uses
func (ix *Index) RelatedOf(id int64) []int64 { return ix.ChildrenOf(id) }

// IsChild reports whether id is subsumed by or merged into another entity
func (ix *Index) IsChild(id int64) bool {
	n, ok := ix.parents[id]
	return ok && (n.SubsumedBy != nil || n.MergedInto != nil)
}

// ParentsOf returns the subsumer and then the merge target of id, each at most once
func (ix *Index) ParentsOf(id int64) []int64 {
	n, ok := ix.parents[id]
	if !ok {
		return nil
	}
	var out []int64
	for _, p := range []*int64{n.SubsumedBy, n.MergedInto} {
		if p != nil && !slices.Contains(out, *p) {
			out = append(out, *p)
		}
	}
	return out
}

// IsMergeParent reports whether some entity is merged into id
func (ix *Index) IsMergeParent(id int64) bool {
	for _, c := range ix.children[id] {
		if m := ix.parents[c].MergedInto; m != nil && *m == id {
			return true
		}
	}
	return false
}

// Len is the number of indexed entities
func (ix *Index) Len() int { return len(ix.parents) }
