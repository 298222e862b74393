package hypergraph

import (
	"fmt"

	"github.com/nwlandry/governance/matrix"
)

// IncidenceMatrix represents the hypergraph as a V×E 0/1 matrix.
// Nodes maps row index → stakeholder id (ascending).
// Edges maps column index → issue id (insertion order).
// Mat[i][j] == 1 iff stakeholder Nodes[i] sat in the group for issue Edges[j].
type IncidenceMatrix struct {
	Nodes []int
	Edges []int
	Mat   *matrix.Dense
}

// Incidence builds the node-by-edge incidence matrix for downstream analysis
// (co-participation counts, overlap statistics, plotting).
//
// Errors:
//   - matrix.ErrInvalidDimensions when the hypergraph has no nodes or no edges.
//
// Complexity: O(V·E) memory, O(Σk) fill.
func (h *Hypergraph) Incidence() (IncidenceMatrix, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	nodes := make([]int, 0, len(h.nodes))
	for s := range h.nodes {
		nodes = append(nodes, s)
	}
	nodes = normalize(nodes)

	m, err := matrix.NewDense(len(nodes), len(h.order))
	if err != nil {
		return IncidenceMatrix{}, fmt.Errorf("Incidence: %w", err)
	}
	row := make(map[int]int, len(nodes))
	for i, s := range nodes {
		row[s] = i
	}
	for j, id := range h.order {
		for _, s := range h.edges[id].Members {
			if err = m.Set(row[s], j, 1); err != nil {
				return IncidenceMatrix{}, fmt.Errorf("Incidence: %w", err)
			}
		}
	}

	edges := make([]int, len(h.order))
	copy(edges, h.order)

	return IncidenceMatrix{Nodes: nodes, Edges: edges, Mat: m}, nil
}
