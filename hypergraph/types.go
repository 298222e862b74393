// Package hypergraph defines the Group Hypergraph: the append-only record of
// which stakeholders decided which issue.
//
// Every hyperedge is a set of stakeholder ids (nodes) tagged with the issue it
// decided; the tag doubles as the edge id, so a hypergraph holds at most one
// edge per issue. Edges are immutable once added and the collection keeps its
// insertion (resolution) order.
//
// All methods are guarded by a single sync.RWMutex, so a finished hypergraph
// can be read from many goroutines (e.g. by analysis code running next to a
// Monte Carlo batch).
//
// Errors:
//
//	ErrInvalidID      - negative issue or stakeholder id.
//	ErrDuplicateEdge  - an edge tagged with the same issue already exists.
//	ErrEdgeNotFound   - requested issue has no edge.
package hypergraph

import (
	"errors"
	"sync"
)

// Sentinel errors for hypergraph operations.
var (
	// ErrInvalidID indicates a negative issue or stakeholder id.
	ErrInvalidID = errors.New("hypergraph: invalid id")

	// ErrDuplicateEdge indicates an issue was tagged on a second edge.
	ErrDuplicateEdge = errors.New("hypergraph: edge for issue already exists")

	// ErrEdgeNotFound indicates an operation referenced an issue with no edge.
	ErrEdgeNotFound = errors.New("hypergraph: edge not found")
)

// Edge is one decision group.
//
// ID is the issue id the group decided. Members is sorted ascending and free of
// duplicates. Seq is the zero-based position of the edge in insertion order.
type Edge struct {
	ID      int
	Members []int
	Seq     int
}

// Option configures a Hypergraph before creation.
type Option func(h *Hypergraph)

// WithCapacity pre-sizes internal catalogs for n edges.
// Panics on negative n: option constructors validate eagerly.
func WithCapacity(n int) Option {
	if n < 0 {
		panic("hypergraph: WithCapacity(n<0)")
	}
	return func(h *Hypergraph) { h.capacity = n }
}

// Hypergraph is an ordered collection of decision groups plus derived views:
// all stakeholders ever involved, all issues ever decided, and the reverse
// lookups issue → group and stakeholder → issues.
type Hypergraph struct {
	mu sync.RWMutex

	capacity int

	edges map[int]*Edge        // issue id → edge
	order []int                // issue ids in insertion order
	nodes map[int]map[int]bool // stakeholder id → set of issue ids
}

// New creates an empty Hypergraph.
// Complexity: O(capacity).
func New(opts ...Option) *Hypergraph {
	h := &Hypergraph{}
	for _, opt := range opts {
		opt(h)
	}
	h.edges = make(map[int]*Edge, h.capacity)
	h.order = make([]int, 0, h.capacity)
	h.nodes = make(map[int]map[int]bool)

	return h
}
