package governance_test

import (
	"testing"

	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/rng"
	"github.com/stretchr/testify/require"
)

// mustRows builds a Dense from literal rows or fails the test.
func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewFromRows(rows)
	require.NoError(t, err)
	return m
}

// constant returns an n×d matrix filled with v.
func constant(t *testing.T, n, d int, v float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(n, d)
	require.NoError(t, err)
	require.NoError(t, m.Apply(func(_, _ int, _ float64) float64 { return v }))
	return m
}

// uniformOpinions returns a seeded n×d matrix with entries in [-1,1).
func uniformOpinions(t *testing.T, n, d int, seed int64) *matrix.Dense {
	t.Helper()
	r := rng.FromSeed(seed)
	m, err := matrix.NewDense(n, d)
	require.NoError(t, err)
	require.NoError(t, m.Apply(func(_, _ int, _ float64) float64 { return rng.Uniform(-1, 1, r) }))
	return m
}

// chain3 is the three-issue chain 0 -(+)- 1 -(−)- 2.
func chain3(t *testing.T) *matrix.Dense {
	return mustRows(t, [][]float64{
		{0, 1, 0},
		{1, 0, -1},
		{0, -1, 0},
	})
}

// ring6 links each issue to its neighbours with alternating signs.
func ring6(t *testing.T) *matrix.Dense {
	return mustRows(t, [][]float64{
		{0, 1, 0, 0, 0, -1},
		{1, 0, -1, 0, 0, 0},
		{0, -1, 0, 1, 0, 0},
		{0, 0, 1, 0, -1, 0},
		{0, 0, 0, -1, 0, 1},
		{-1, 0, 0, 0, 1, 0},
	})
}

// newState builds a State over op and rel with a seeded RNG.
func newState(t *testing.T, op, rel *matrix.Dense, seed int64) *governance.State {
	t.Helper()
	st, err := governance.NewState(op, rel, rng.FromSeed(seed))
	require.NoError(t, err)
	return st
}

// at reads m[i,j] or fails the test.
func at(t *testing.T, m *matrix.Dense, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)
	return v
}
