// Package: governance
//
// errors.go: sentinel errors for the decision-process engine.
//
// Error policy:
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach context with %w; lower-level sentinels
//     (matrix.ErrAsymmetry, hypergraph.ErrDuplicateEdge, ...) stay matchable
//     because wrapping uses multiple %w verbs.
//   • Every failure is fatal for the run: nothing is retried.

package governance

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch indicates that the relationship matrix is not square, or the
// opinion matrix column count differs from the number of issues.
// Raised before any mutation.
var ErrShapeMismatch = errors.New("governance: shape mismatch")

// ErrInvalidConfiguration indicates a configuration the engine cannot run:
// group_overlap > group_size, group_size < 2, an unknown strategy name, a
// relationship matrix that is not symmetric/ternary, opinions outside [-1,1],
// or a strategy that broke its contract (e.g. re-selected a decided issue).
var ErrInvalidConfiguration = errors.New("governance: invalid configuration")

// ErrInsufficientPopulation indicates that a group selector could not fill a
// group to the requested size from the fresh-stakeholder pool. Only returned
// when strict population checking is enabled; by default groups are capped.
var ErrInsufficientPopulation = errors.New("governance: insufficient population")

// ErrProcessDone indicates Step was called after every issue was resolved.
var ErrProcessDone = errors.New("governance: process already done")

// configErrorf wraps ErrInvalidConfiguration with a formatted context.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
