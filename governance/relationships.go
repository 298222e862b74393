package governance

import (
	"fmt"

	"github.com/nwlandry/governance/matrix"
)

// Relationships is the immutable D×D decision relationship model.
// Entry (i,k) is -1 (contradictory), 0 (unrelated) or +1 (reinforcing); the
// matrix is symmetric and its diagonal is ignored.
//
// The engine owns a private copy, so the caller's matrix is never mutated and
// later caller mutations do not leak into a run.
type Relationships struct {
	m       *matrix.Dense
	related [][]int // related[i] = sorted k≠i with m[i,k] != 0
	degree  []int
}

// NewRelationships validates rel and returns an immutable copy.
//
// Validation order:
//  1. square → else ErrShapeMismatch (wrapping matrix.ErrDimensionMismatch/ErrNilMatrix).
//  2. symmetric → else ErrInvalidConfiguration (wrapping matrix.ErrAsymmetry).
//  3. off-diagonal entries in {-1,0,1} → else ErrInvalidConfiguration (wrapping matrix.ErrDisallowedValue).
//
// Complexity: O(D²).
func NewRelationships(rel *matrix.Dense) (*Relationships, error) {
	if err := matrix.ValidateSquare(rel); err != nil {
		return nil, fmt.Errorf("%w: relationships: %w", ErrShapeMismatch, err)
	}
	if err := matrix.ValidateSymmetric(rel, 0); err != nil {
		return nil, fmt.Errorf("%w: relationships: %w", ErrInvalidConfiguration, err)
	}
	if err := matrix.ValidateValues(rel, -1, 0, 1); err != nil {
		return nil, fmt.Errorf("%w: relationships: %w", ErrInvalidConfiguration, err)
	}

	d := rel.Rows()
	sums, err := matrix.RowAbsSums(rel, true)
	if err != nil {
		return nil, fmt.Errorf("%w: relationships: %w", ErrShapeMismatch, err)
	}
	r := &Relationships{
		m:       rel.CloneDense(),
		related: make([][]int, d),
		degree:  make([]int, d),
	}
	var (
		i, k int
		v    float64
	)
	for i = 0; i < d; i++ {
		r.related[i] = make([]int, 0)
		for k = 0; k < d; k++ {
			if k == i {
				continue
			}
			v, _ = r.m.At(i, k)
			if v != 0 {
				r.related[i] = append(r.related[i], k)
			}
		}
		r.degree[i] = int(sums[i])
	}

	return r, nil
}

// Issues returns D, the number of issues.
func (r *Relationships) Issues() int { return r.m.Rows() }

// At returns the relationship between issues i and k as -1, 0 or +1.
// Out-of-range indices and the diagonal report 0.
func (r *Relationships) At(i, k int) int {
	if i == k {
		return 0
	}
	v, err := r.m.At(i, k)
	if err != nil {
		return 0
	}
	return int(v)
}

// Related returns the issues k≠i with a non-zero relationship to i, ascending.
// The returned slice is a copy.
func (r *Relationships) Related(i int) []int {
	if i < 0 || i >= len(r.related) {
		return []int{}
	}
	out := make([]int, len(r.related[i]))
	copy(out, r.related[i])
	return out
}

// Degree returns Σ_k |rel[i,k]| over k≠i.
func (r *Relationships) Degree(i int) int {
	if i < 0 || i >= len(r.degree) {
		return 0
	}
	return r.degree[i]
}

// Matrix returns a copy of the underlying matrix.
func (r *Relationships) Matrix() *matrix.Dense { return r.m.CloneDense() }
