// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/nwlandry/governance/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsTol = 1e-12

// TestMeanAndColumns checks the column reductions on a small fixture.
func TestMeanAndColumns(t *testing.T) {
	t.Parallel()

	m := mustRows(t, [][]float64{
		{1, -1, 0.5},
		{-0.5, 1, 0.5},
	})

	mean, err := matrix.Mean(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, mean, statsTol)

	cm, err := matrix.ColMeans(m)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0, 0.5}, cm, statsTol)

	am, err := matrix.ColAbsMeans(m)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, 1, 0.5}, am, statsTol)

	vars, err := matrix.ColVariances(m)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5625, 1, 0}, vars, statsTol)
}

// TestRowAbsSums verifies diagonal skipping.
func TestRowAbsSums(t *testing.T) {
	t.Parallel()

	m := mustRows(t, [][]float64{
		{9, 1, -1},
		{1, 9, 0},
		{-1, 0, 9},
	})

	withDiag, err := matrix.RowAbsSums(m, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 10, 10}, withDiag)

	noDiag, err := matrix.RowAbsSums(m, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1}, noDiag)
}

// TestColSum verifies subset sums and bounds checks.
func TestColSum(t *testing.T) {
	t.Parallel()

	m := mustRows(t, [][]float64{{0.5}, {-0.25}, {1}})

	s, err := matrix.ColSum(m, []int{0, 2}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, s, statsTol)

	s, err = matrix.ColSum(m, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = matrix.ColSum(m, []int{3}, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestReductions_EmptyInput rejects zero-area matrices instead of yielding NaN.
func TestReductions_EmptyInput(t *testing.T) {
	t.Parallel()

	base := mustRows(t, [][]float64{{1}})
	empty, err := base.Induced(nil, []int{0})
	require.NoError(t, err)

	_, err = matrix.Mean(empty)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.ColMeans(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
