package grouping

import (
	"cmp"
	"slices"
)

// Relation is the symmetric "must not sit together" relation over student ids.
// Every mutation updates both endpoints, so AreIncompatible(a, b) always
// equals AreIncompatible(b, a).
type Relation struct {
	adj map[int64]map[int64]struct{}
}

func NewRelation() *Relation {
	return &Relation{adj: map[int64]map[int64]struct{}{}}
}

// Add records a and b as incompatible. Self edges are ignored.
func (r *Relation) Add(a, b int64) {
	if a == b {
		return
	}
	r.link(a, b)
	r.link(b, a)
}

func (r *Relation) link(a, b int64) {
	set := r.adj[a]
	if set == nil {
		set = map[int64]struct{}{}
		r.adj[a] = set
	}
	set[b] = struct{}{}
}

// Remove deletes the edge between a and b if present.
func (r *Relation) Remove(a, b int64) {
	r.unlink(a, b)
	r.unlink(b, a)
}

func (r *Relation) unlink(a, b int64) {
	set := r.adj[a]
	if set == nil {
		return
	}
	delete(set, b)
	if len(set) == 0 {
		delete(r.adj, a)
	}
}

func (r *Relation) AreIncompatible(a, b int64) bool {
	if r == nil {
		return false
	}
	_, ok := r.adj[a][b]
	return ok
}

// Of returns the sorted ids incompatible with id.
func (r *Relation) Of(id int64) []int64 {
	if r == nil {
		return nil
	}
	out := make([]int64, 0, len(r.adj[id]))
	for other := range r.adj[id] {
		out = append(out, other)
	}
	slices.Sort(out)
	return out
}

// Len reports the number of undirected edges.
func (r *Relation) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, set := range r.adj {
		n += len(set)
	}
	return n / 2
}

// Pairs lists every edge once with the smaller id first.
func (r *Relation) Pairs() [][2]int64 {
	if r == nil {
		return nil
	}
	var out [][2]int64
	for a, set := range r.adj {
		for b := range set {
			if a < b {
				out = append(out, [2]int64{a, b})
			}
		}
	}
	slices.SortFunc(out, func(x, y [2]int64) int {
		return cmp.Or(cmp.Compare(x[0], y[0]), cmp.Compare(x[1], y[1]))
	})
	return out
}
