// SPDX-License-Identifier: MIT

// Package matrix - column/row reductions.
//
// Purpose:
//   - Provide the handful of reductions the governance engine and its analysis
//     layer need, with fixed summation order (row-major, ascending index) so
//     results are bit-reproducible for a given input.
//
// Contract:
//   - Inputs must be non-nil (ErrNilMatrix).
//   - Reductions over zero rows/cols return ErrInvalidDimensions rather than NaN.

package matrix

import (
	"fmt"
	"math"
)

// statsErrorf tags a reduction error with its function name.
func statsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// requireArea rejects nil and zero-area matrices.
func requireArea(tag string, m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return statsErrorf(tag, err)
	}
	if m.Rows() == 0 || m.Cols() == 0 {
		return statsErrorf(tag, ErrInvalidDimensions)
	}

	return nil
}

// Mean returns the arithmetic mean of all entries.
// Complexity: O(r*c).
func Mean(m Matrix) (float64, error) {
	if err := requireArea("Mean", m); err != nil {
		return 0, err
	}
	var (
		i, j int
		v    float64
		sum  float64
	)
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			v, _ = m.At(i, j)
			sum += v
		}
	}

	return sum / float64(m.Rows()*m.Cols()), nil
}

// ColMeans returns the per-column arithmetic mean (length Cols()).
// Complexity: O(r*c).
func ColMeans(m Matrix) ([]float64, error) {
	return colReduce("ColMeans", m, func(v float64) float64 { return v })
}

// ColAbsMeans returns the per-column mean of absolute values: mean_i |m[i,j]|.
// Used as the opinion-strength weight of an issue.
// Complexity: O(r*c).
func ColAbsMeans(m Matrix) ([]float64, error) {
	return colReduce("ColAbsMeans", m, math.Abs)
}

// colReduce averages f(m[i,j]) down each column.
func colReduce(tag string, m Matrix, f func(float64) float64) ([]float64, error) {
	if err := requireArea(tag, m); err != nil {
		return nil, err
	}
	rows, cols := m.Rows(), m.Cols()
	out := make([]float64, cols)

	var (
		i, j int
		v    float64
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)
			out[j] += f(v)
		}
	}
	for j = 0; j < cols; j++ {
		out[j] /= float64(rows)
	}

	return out, nil
}

// ColVariances returns the per-column population variance.
// Complexity: O(r*c).
func ColVariances(m Matrix) ([]float64, error) {
	means, err := ColMeans(m)
	if err != nil {
		return nil, statsErrorf("ColVariances", err)
	}
	rows, cols := m.Rows(), m.Cols()
	out := make([]float64, cols)

	var (
		i, j int
		v, d float64
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)
			d = v - means[j]
			out[j] += d * d
		}
	}
	for j = 0; j < cols; j++ {
		out[j] /= float64(rows)
	}

	return out, nil
}

// RowAbsSums returns Σ_j |m[i,j]| for every row i.
// When skipDiagonal is true the (i,i) entry is excluded; relationship
// matrices use this to compute an issue's degree.
// Complexity: O(r*c).
func RowAbsSums(m Matrix, skipDiagonal bool) ([]float64, error) {
	if err := requireArea("RowAbsSums", m); err != nil {
		return nil, err
	}
	out := make([]float64, m.Rows())

	var (
		i, j int
		v    float64
	)
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			if skipDiagonal && i == j {
				continue
			}
			v, _ = m.At(i, j)
			out[i] += math.Abs(v)
		}
	}

	return out, nil
}

// ColSum returns Σ m[r,col] over r in rows, summed in the given order.
// Callers that need order-independent results pass rows sorted.
// Errors: ErrNilMatrix, ErrOutOfRange.
// Complexity: O(len(rows)).
func ColSum(m Matrix, rows []int, col int) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, statsErrorf("ColSum", err)
	}
	var (
		sum float64
		v   float64
		err error
	)
	for _, r := range rows {
		if v, err = m.At(r, col); err != nil {
			return 0, statsErrorf("ColSum", err)
		}
		sum += v
	}

	return sum, nil
}
