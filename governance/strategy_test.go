package governance_test

import (
	"testing"

	"github.com/nwlandry/governance/governance"
	"github.com/stretchr/testify/require"
)

// TestParse_Strategies checks name round-trips and unknown names.
func TestParse_Strategies(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"random", "sentiment", "degree", "snowball"} {
		d, err := governance.ParseDecisionSelector(name)
		require.NoError(t, err)
		require.Equal(t, name, d.Name())
	}
	for _, name := range []string{"random", "star"} {
		g, err := governance.ParseGroupSelector(name)
		require.NoError(t, err)
		require.Equal(t, name, g.Name())
	}
	for _, name := range []string{"average", "star"} {
		r, err := governance.ParseDecisionResolver(name)
		require.NoError(t, err)
		require.Equal(t, name, r.Name())

		u, err := governance.ParseOpinionUpdater(name)
		require.NoError(t, err)
		require.Equal(t, name, u.Name())
	}

	_, err := governance.ParseDecisionSelector("greedy")
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
	_, err = governance.ParseGroupSelector("")
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
	_, err = governance.ParseDecisionResolver("majority")
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
	_, err = governance.ParseOpinionUpdater("Average")
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
}

// TestSnowball_EmptyHistory draws uniformly over every issue on the first call.
func TestSnowball_EmptyHistory(t *testing.T) {
	t.Parallel()

	seen := make(map[int]int)
	for seed := int64(1); seed <= 300; seed++ {
		st := newState(t, constant(t, 2, 3, 0), chain3(t), seed)
		d, err := governance.SnowballDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.Contains(t, []int{0, 1, 2}, d)
		seen[d]++
	}
	require.Len(t, seen, 3)
}

// TestSnowball_SingleNeighbour must return the only related, unresolved issue.
func TestSnowball_SingleNeighbour(t *testing.T) {
	t.Parallel()

	rel := mustRows(t, [][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 0},
	})
	for seed := int64(1); seed <= 50; seed++ {
		st := newState(t, constant(t, 2, 3, 0), rel, seed)
		require.NoError(t, st.History.Record(0, governance.For))
		d, err := governance.SnowballDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.Equal(t, 1, d)
	}
}

// TestSnowball_EmptyPoolFallback falls back to every unresolved issue.
func TestSnowball_EmptyPoolFallback(t *testing.T) {
	t.Parallel()

	rel := constant(t, 3, 3, 0)
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 100; seed++ {
		st := newState(t, constant(t, 2, 3, 0), rel, seed)
		require.NoError(t, st.History.Record(0, governance.Against))
		d, err := governance.SnowballDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.NotEqual(t, 0, d)
		seen[d] = true
	}
	require.Equal(t, map[int]bool{1: true, 2: true}, seen)
}

// TestSelectors_NeverRepeat checks every selector avoids decided issues and
// reports ErrProcessDone when nothing is left.
func TestSelectors_NeverRepeat(t *testing.T) {
	t.Parallel()

	selectors := []governance.DecisionSelector{
		governance.RandomDecision{},
		governance.SentimentDecision{},
		governance.DegreeDecision{},
		governance.SnowballDecision{},
	}
	for _, sel := range selectors {
		sel := sel
		t.Run(sel.Name(), func(t *testing.T) {
			t.Parallel()
			st := newState(t, uniformOpinions(t, 5, 6, 3), ring6(t), 11)
			for i := 0; i < 6; i++ {
				d, err := sel.SelectDecision(st)
				require.NoError(t, err)
				require.False(t, st.History.Has(d))
				require.NoError(t, st.History.Record(d, governance.For))
			}
			_, err := sel.SelectDecision(st)
			require.ErrorIs(t, err, governance.ErrProcessDone)
		})
	}
}

// TestSentiment_Weights never picks a zero-strength issue while a positive one
// remains, and degrades to uniform once only zero weights are left.
func TestSentiment_Weights(t *testing.T) {
	t.Parallel()

	op := mustRows(t, [][]float64{
		{0.5, 0, 0},
		{-0.5, 0, 0},
	})
	for seed := int64(1); seed <= 50; seed++ {
		st := newState(t, op, chain3(t), seed)
		d, err := governance.SentimentDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.Equal(t, 0, d)

		require.NoError(t, st.History.Record(0, governance.For))
		d, err = governance.SentimentDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.Contains(t, []int{1, 2}, d)
	}
}

// TestDegree_Weights never picks an isolated issue while a linked one remains.
func TestDegree_Weights(t *testing.T) {
	t.Parallel()

	rel := mustRows(t, [][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 0},
	})
	for seed := int64(1); seed <= 50; seed++ {
		st := newState(t, constant(t, 2, 3, 0.2), rel, seed)
		d, err := governance.DegreeDecision{}.SelectDecision(st)
		require.NoError(t, err)
		require.Contains(t, []int{0, 1}, d)
	}
}

// TestRandomGroup_Overlap checks the capping arithmetic with a large population.
func TestRandomGroup_Overlap(t *testing.T) {
	t.Parallel()

	st := newState(t, constant(t, 10, 3, 0), chain3(t), 5)

	first, err := governance.RandomGroup{}.SelectGroup(st, 0, 4, 2)
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.IsIncreasing(t, first)
	require.NoError(t, st.Groups.AddGroup(0, first))

	second, err := governance.RandomGroup{}.SelectGroup(st, 2, 4, 2)
	require.NoError(t, err)
	require.Len(t, second, 4)
	require.IsIncreasing(t, second)

	var fromOld int
	for _, p := range second {
		if contains(first, p) {
			fromOld++
		}
	}
	require.Equal(t, 2, fromOld)
}

// TestRandomGroup_Capping shrinks the group when the fresh pool runs dry and
// fails loudly in strict mode.
func TestRandomGroup_Capping(t *testing.T) {
	t.Parallel()

	st := newState(t, constant(t, 3, 3, 0), chain3(t), 1)
	require.NoError(t, st.Groups.AddGroup(0, []int{0, 1}))

	g, err := governance.RandomGroup{}.SelectGroup(st, 1, 2, 0)
	require.NoError(t, err)
	require.Equal(t, []int{2}, g)

	_, err = governance.RandomGroup{Strict: true}.SelectGroup(st, 1, 2, 0)
	require.ErrorIs(t, err, governance.ErrInsufficientPopulation)

	// Overlap larger than the old pool is clamped to |old|.
	g, err = governance.RandomGroup{}.SelectGroup(st, 1, 3, 3)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, g)

	require.NoError(t, st.Groups.AddGroup(1, []int{2}))
	g, err = governance.RandomGroup{}.SelectGroup(st, 2, 2, 0)
	require.NoError(t, err)
	require.Empty(t, g)
}

// TestStarGroup_RelatedOverlap draws the overlap only from groups of related issues.
func TestStarGroup_RelatedOverlap(t *testing.T) {
	t.Parallel()

	rel := mustRows(t, [][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 0},
	})
	for seed := int64(1); seed <= 30; seed++ {
		st := newState(t, constant(t, 6, 3, 0), rel, seed)
		require.NoError(t, st.Groups.AddGroup(0, []int{0, 1}))
		require.NoError(t, st.Groups.AddGroup(2, []int{2, 3}))

		g, err := governance.StarGroup{}.SelectGroup(st, 1, 3, 2)
		require.NoError(t, err)
		require.Len(t, g, 3)
		require.Subset(t, g, []int{0, 1})

		// Stakeholders 2 and 3 sat only on an unrelated issue, so they are fresh.
		var third int
		for _, p := range g {
			if p != 0 && p != 1 {
				third = p
			}
		}
		require.Contains(t, []int{2, 3, 4, 5}, third)
	}

	st := newState(t, constant(t, 4, 3, 0), rel, 1)
	require.NoError(t, st.Groups.AddGroup(2, []int{0, 1, 2}))
	_, err := governance.StarGroup{Strict: true}.SelectGroup(st, 1, 2, 0)
	require.NoError(t, err)
	_, err = governance.StarGroup{Strict: true}.SelectGroup(st, 1, 5, 0)
	require.ErrorIs(t, err, governance.ErrInsufficientPopulation)
}

// TestAverageResolver_SignLaw covers positive, negative, zero and empty sums.
func TestAverageResolver_SignLaw(t *testing.T) {
	t.Parallel()

	op := mustRows(t, [][]float64{
		{0.3, -0.5},
		{-0.1, 0.5},
		{-0.4, 0.2},
	})
	st := newState(t, op, mustRows(t, [][]float64{{0, 0}, {0, 0}}), 1)

	tests := []struct {
		name  string
		issue int
		group []int
		want  governance.Outcome
	}{
		{"positive", 0, []int{0, 1}, governance.For},
		{"negative", 0, []int{1, 2}, governance.Against},
		{"zero sum", 1, []int{0, 1}, governance.For},
		{"empty group", 0, nil, governance.For},
		{"unsorted input", 0, []int{2, 0, 1}, governance.Against},
	}
	for _, tc := range tests {
		got, err := governance.AverageResolver{}.Resolve(st, tc.issue, tc.group)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

// TestStarResolver picks the outcome most coherent with related issues and
// defers to the average verdict on ties.
func TestStarResolver(t *testing.T) {
	t.Parallel()

	rel := mustRows(t, [][]float64{
		{0, 1, -1},
		{1, 0, 0},
		{-1, 0, 0},
	})
	op := mustRows(t, [][]float64{
		{0.9, -0.8, 0.6},
		{0.9, -0.8, 0.6},
	})
	st := newState(t, op, rel, 1)

	// cost(+1) = |1+0.8| + |-1-0.6| = 3.4; cost(-1) = |-1+0.8| + |1-0.6| = 0.6.
	got, err := governance.StarResolver{}.Resolve(st, 0, []int{1, 0})
	require.NoError(t, err)
	require.Equal(t, governance.Against, got)

	// Empty group: every mean is 0, costs tie, average of nothing is For.
	got, err = governance.StarResolver{}.Resolve(st, 0, nil)
	require.NoError(t, err)
	require.Equal(t, governance.For, got)

	// No related issues: tie broken by the group's own view of the issue.
	iso := newState(t, mustRows(t, [][]float64{{-0.7, 0.1}, {0.2, 0.1}}), mustRows(t, [][]float64{{0, 0}, {0, 0}}), 1)
	got, err = governance.StarResolver{}.Resolve(iso, 0, []int{0, 1})
	require.NoError(t, err)
	require.Equal(t, governance.Against, got)
}

// TestAverageUpdater_Collapse overwrites every member's row with the group mean.
func TestAverageUpdater_Collapse(t *testing.T) {
	t.Parallel()

	op := mustRows(t, [][]float64{
		{1, 0},
		{0, -1},
		{0.5, 0.5},
	})
	st := newState(t, op, mustRows(t, [][]float64{{0, 1}, {1, 0}}), 1)

	require.NoError(t, governance.AverageUpdater{}.Update(st, 0, []int{2, 0}, governance.Against))
	require.Equal(t, [][]float64{
		{0.5, 0.5},
		{0, -1},
		{0.5, 0.5},
	}, st.Opinions.ToRows())

	require.NoError(t, governance.AverageUpdater{}.Update(st, 0, nil, governance.For))
	require.Equal(t, []float64{0, -1}, st.Opinions.ToRows()[1])
}

// TestStarUpdater_Coherence snaps related issues and leaves the rest alone.
func TestStarUpdater_Coherence(t *testing.T) {
	t.Parallel()

	rel := mustRows(t, [][]float64{
		{0, 1, -1, 0},
		{1, 0, 0, 0},
		{-1, 0, 0, 0},
		{0, 0, 0, 0},
	})
	op := mustRows(t, [][]float64{
		{0.2, 0.3, 0.4, 0.5},
		{0.1, 0.1, 0.1, 0.1},
	})
	st := newState(t, op, rel, 1)

	require.NoError(t, governance.StarUpdater{}.Update(st, 0, []int{1}, governance.Against))
	require.Equal(t, [][]float64{
		{0.2, 0.3, 0.4, 0.5},
		{0.1, -1, 1, 0.1},
	}, st.Opinions.ToRows())

	require.NoError(t, governance.StarUpdater{}.Update(st, 0, []int{0, 1}, governance.For))
	for _, p := range []int{0, 1} {
		for _, k := range st.Relationships.Related(0) {
			require.Equal(t, float64(st.Relationships.At(0, k)), at(t, st.Opinions, p, k))
		}
	}
	require.Equal(t, 0.2, at(t, st.Opinions, 0, 0))
	require.Equal(t, 0.5, at(t, st.Opinions, 0, 3))
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
