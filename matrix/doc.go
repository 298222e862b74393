// Package matrix provides the dense, row-major float64 storage used by the
// governance engine for its two numeric inputs:
//
//   - the Opinion Matrix (N stakeholders × D issues, entries in [-1,1]);
//   - the Decision Relationship Matrix (D × D, symmetric, entries in {-1,0,1}).
//
// Design:
//
//   - Safety at the public surface: At/Set return sentinel errors
//     (ErrOutOfRange, ErrNaNInf) instead of panicking.
//   - Determinism: every loop is row-major i→j; no map iteration anywhere.
//   - Validators live in one place (validators.go) so callers never duplicate
//     guard logic: ValidateSquare, ValidateSymmetric, ValidateRange,
//     ValidateValues.
//   - Statistics (stats.go) are the reductions the engine needs: column means,
//     absolute column means, absolute row sums and the mean of an induced
//     sub-matrix.
//
// Quick example:
//
//	m, _ := matrix.NewFromRows([][]float64{
//		{0.5, -0.2},
//		{0.1, 0.9},
//	})
//	v, _ := m.At(1, 1) // 0.9
package matrix
