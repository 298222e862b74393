// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep callers minimal by delegating shape/nil/symmetry/range checks here.
//  - Return sentinel errors wrapped with the validator tag so call sites can
//    wrap again uniformly and still match with errors.Is.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Symmetry check runs O(n²) on the upper triangle only.
//
// AI-Hints:
//  - Validate the relationship matrix with ValidateSquare → ValidateSymmetric →
//    ValidateValues(-1,0,1) before starting a governance run.
//  - Validate opinions with ValidateRange(-1,1).

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Handles both a nil interface and a typed nil *Dense.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(1).
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquare", err)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateCols checks that m has exactly n columns.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(1).
func ValidateCols(m Matrix, n int) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateCols", err)
	}
	if m.Cols() != n {
		return validatorErrorf("ValidateCols", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric checks A is symmetric within tolerance tol:
// |A[i,j] - A[j,i]| ≤ tol for all i<j.
//
// Returns ErrNilMatrix/ErrDimensionMismatch on structural issues, ErrNaNInf on bad tol,
// ErrAsymmetry on violation.
// Complexity: O(n^2) where n = Rows(A). Space: O(1).
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	if tol < 0 {
		tol = -tol
	}

	n := m.Rows()
	var (
		i, j     int
		aij, aji float64
	)
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			aij, _ = m.At(i, j)
			aji, _ = m.At(j, i)
			if math.Abs(aij-aji) > tol {
				return validatorErrorf(fmt.Sprintf("ValidateSymmetric(%d,%d)", i, j), ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateRange checks every entry lies in the closed interval [lo, hi].
// Errors: ErrNilMatrix, ErrNaNInf (non-finite entry), ErrValueOutOfRange.
// Complexity: O(r*c).
func ValidateRange(m Matrix, lo, hi float64) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateRange", err)
	}

	var (
		i, j int
		v    float64
	)
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			v, _ = m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf(fmt.Sprintf("ValidateRange(%d,%d)", i, j), ErrNaNInf)
			}
			if v < lo || v > hi {
				return validatorErrorf(fmt.Sprintf("ValidateRange(%d,%d)=%g", i, j, v), ErrValueOutOfRange)
			}
		}
	}

	return nil
}

// ValidateValues checks every off-diagonal entry is exactly one of allowed.
// The diagonal is skipped: square matrices here encode pairwise relations and
// the diagonal carries no meaning. Non-square matrices are checked in full.
// Errors: ErrNilMatrix, ErrDisallowedValue.
// Complexity: O(r*c*len(allowed)).
func ValidateValues(m Matrix, allowed ...float64) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateValues", err)
	}
	square := m.Rows() == m.Cols()

	var (
		i, j, k int
		v       float64
		ok      bool
	)
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			if square && i == j {
				continue
			}
			v, _ = m.At(i, j)
			ok = false
			for k = 0; k < len(allowed); k++ {
				if v == allowed[k] {
					ok = true
					break
				}
			}
			if !ok {
				return validatorErrorf(fmt.Sprintf("ValidateValues(%d,%d)=%g", i, j, v), ErrDisallowedValue)
			}
		}
	}

	return nil
}
