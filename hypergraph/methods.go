// File: methods.go
// Role: Edge lifecycle & queries: AddGroup/HasEdge/Group/Edges/Nodes,
//       EdgesForIssues/MembersOf reverse lookups, GroupsOf, Clone.
// Determinism:
//   - Edges() and GroupsOf() return issue ids in insertion order.
//   - Nodes(), Group() and MembersOf() return stakeholder ids sorted ascending.
// Concurrency:
//   - Mutations under mu write lock; queries under mu read lock.

package hypergraph

import (
	"fmt"
	"sort"
)

// AddGroup records the group of stakeholders that decided issue.
//
// Steps:
//  1. Validate ids (ErrInvalidID).
//  2. Copy, sort and de-duplicate members (caller's slice is never retained).
//  3. Lock; reject a second edge for the same issue (ErrDuplicateEdge).
//  4. Store the edge, append to the order, index memberships.
//
// An empty member set is legal: a group selector that capped a group down to
// nothing still produces a historical record for the issue.
//
// Complexity: O(k log k) for k members.
func (h *Hypergraph) AddGroup(issue int, members []int) error {
	if issue < 0 {
		return fmt.Errorf("AddGroup(%d): %w", issue, ErrInvalidID)
	}
	set := normalize(members)
	if len(set) > 0 && set[0] < 0 {
		return fmt.Errorf("AddGroup(%d): member %d: %w", issue, set[0], ErrInvalidID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.edges[issue]; ok {
		return fmt.Errorf("AddGroup(%d): %w", issue, ErrDuplicateEdge)
	}
	h.edges[issue] = &Edge{ID: issue, Members: set, Seq: len(h.order)}
	h.order = append(h.order, issue)
	for _, s := range set {
		if h.nodes[s] == nil {
			h.nodes[s] = make(map[int]bool)
		}
		h.nodes[s][issue] = true
	}

	return nil
}

// normalize returns a sorted, duplicate-free copy of ids.
func normalize(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)

	w := 0
	for i, v := range out {
		if i > 0 && v == out[w-1] {
			continue
		}
		out[w] = v
		w++
	}

	return out[:w]
}

// HasEdge reports whether issue has already been decided by some group.
// Complexity: O(1).
func (h *Hypergraph) HasEdge(issue int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.edges[issue]
	return ok
}

// Edge returns a copy of the edge tagged with issue.
// Errors: ErrEdgeNotFound.
// Complexity: O(k).
func (h *Hypergraph) Edge(issue int) (Edge, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.edges[issue]
	if !ok {
		return Edge{}, fmt.Errorf("Edge(%d): %w", issue, ErrEdgeNotFound)
	}
	members := make([]int, len(e.Members))
	copy(members, e.Members)

	return Edge{ID: e.ID, Members: members, Seq: e.Seq}, nil
}

// Group returns the sorted members of the group that decided issue.
// Errors: ErrEdgeNotFound.
func (h *Hypergraph) Group(issue int) ([]int, error) {
	e, err := h.Edge(issue)
	if err != nil {
		return nil, err
	}
	return e.Members, nil
}

// Edges returns all edge ids (issue tags) in insertion order.
// Complexity: O(E).
func (h *Hypergraph) Edges() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]int, len(h.order))
	copy(out, h.order)
	return out
}

// Nodes returns every stakeholder that appears in any group, sorted ascending.
// Complexity: O(V log V).
func (h *Hypergraph) Nodes() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]int, 0, len(h.nodes))
	for s := range h.nodes {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// EdgeCount returns the number of recorded groups.
// Complexity: O(1).
func (h *Hypergraph) EdgeCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

// NodeCount returns the number of distinct stakeholders ever involved.
// Complexity: O(1).
func (h *Hypergraph) NodeCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// EdgesForIssues returns the ids of recorded edges tagged with any of issues,
// in insertion order. Issues without an edge are skipped.
// Complexity: O(E + len(issues)).
func (h *Hypergraph) EdgesForIssues(issues []int) []int {
	want := make(map[int]bool, len(issues))
	for _, i := range issues {
		want[i] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]int, 0, len(issues))
	for _, id := range h.order {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

// MembersOf returns the sorted union of members of the given edges.
// Unknown edge ids contribute nothing.
// Complexity: O(Σk log Σk).
func (h *Hypergraph) MembersOf(edges []int) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[int]bool)
	out := make([]int, 0)
	for _, id := range edges {
		e, ok := h.edges[id]
		if !ok {
			continue
		}
		for _, s := range e.Members {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Ints(out)
	return out
}

// GroupsOf returns the issues whose group contained stakeholder, in insertion order.
// Complexity: O(E).
func (h *Hypergraph) GroupsOf(stakeholder int) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	in := h.nodes[stakeholder]
	out := make([]int, 0, len(in))
	for _, id := range h.order {
		if in[id] {
			out = append(out, id)
		}
	}
	return out
}

// Degree returns the number of groups stakeholder sat in.
// Complexity: O(1).
func (h *Hypergraph) Degree(stakeholder int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes[stakeholder])
}

// Clone returns a deep, independent copy of the hypergraph.
// Complexity: O(Σk).
func (h *Hypergraph) Clone() *Hypergraph {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c := New(WithCapacity(len(h.order)))
	for _, id := range h.order {
		e := h.edges[id]
		members := make([]int, len(e.Members))
		copy(members, e.Members)
		c.edges[id] = &Edge{ID: e.ID, Members: members, Seq: e.Seq}
		c.order = append(c.order, id)
		for _, s := range members {
			if c.nodes[s] == nil {
				c.nodes[s] = make(map[int]bool)
			}
			c.nodes[s][id] = true
		}
	}
	return c
}
