package governance_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_ThreeIssueScenario is the D=3, N=4, size 2, overlap 0 scenario with
// random selection and average resolution.
func TestRun_ThreeIssueScenario(t *testing.T) {
	t.Parallel()

	op := mustRows(t, [][]float64{
		{0.4, -0.2, 0.9},
		{-0.6, 0.3, 0.1},
		{0.2, 0.8, -0.5},
		{-0.1, -0.7, 0.6},
	})
	res, err := governance.Run(op, chain3(t),
		governance.WithGroupSize(2),
		governance.WithGroupOverlap(0),
		governance.WithSeed(2024),
	)
	require.NoError(t, err)

	require.Equal(t, 3, res.History.Len())
	got := res.History.Map()
	require.Len(t, got, 3)
	for issue := 0; issue < 3; issue++ {
		o, ok := got[issue]
		require.True(t, ok, "issue %d missing", issue)
		require.Contains(t, []governance.Outcome{governance.For, governance.Against}, o)
	}

	res.Opinions.Do(func(_, _ int, v float64) bool {
		assert.False(t, math.IsNaN(v))
		return true
	})
	require.NoError(t, matrix.ValidateRange(res.Opinions, -1, 1))

	// Two disjoint pairs use up the population; the last group is empty.
	require.Len(t, res.Rounds, 3)
	require.Len(t, res.Rounds[0].Group, 2)
	require.Len(t, res.Rounds[1].Group, 2)
	require.Empty(t, res.Rounds[2].Group)
	require.Equal(t, []int{0, 1, 2, 3}, res.Groups.Nodes())
	require.Equal(t, 3, res.Groups.EdgeCount())
}

// TestRun_AllStrategies checks termination, coverage, the group bound and
// that neither input matrix is mutated, for every strategy combination.
func TestRun_AllStrategies(t *testing.T) {
	t.Parallel()

	decisions := []string{"random", "sentiment", "degree", "snowball"}
	groups := []string{"random", "star"}
	resolvers := []string{"average", "star"}
	updaters := []string{"average", "star"}

	for _, dn := range decisions {
		for _, gn := range groups {
			for _, rn := range resolvers {
				for _, un := range updaters {
					dn, gn, rn, un := dn, gn, rn, un
					t.Run(strings.Join([]string{dn, gn, rn, un}, "/"), func(t *testing.T) {
						t.Parallel()

						d, err := governance.ParseDecisionSelector(dn)
						require.NoError(t, err)
						g, err := governance.ParseGroupSelector(gn)
						require.NoError(t, err)
						r, err := governance.ParseDecisionResolver(rn)
						require.NoError(t, err)
						u, err := governance.ParseOpinionUpdater(un)
						require.NoError(t, err)

						op := uniformOpinions(t, 12, 6, 99)
						rel := ring6(t)
						opBefore, relBefore := op.CloneDense(), rel.CloneDense()

						res, err := governance.Run(op, rel,
							governance.WithGroupSize(3),
							governance.WithGroupOverlap(1),
							governance.WithDecisionSelector(d),
							governance.WithGroupSelector(g),
							governance.WithDecisionResolver(r),
							governance.WithOpinionUpdater(u),
							governance.WithSeed(17),
						)
						require.NoError(t, err)

						require.Len(t, res.Rounds, 6)
						require.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, res.History.Order())
						require.Equal(t, res.History.Order(), res.Groups.Edges())
						for i, rd := range res.Rounds {
							require.Equal(t, i, rd.Index)
							require.LessOrEqual(t, len(rd.Group), 3)
						}
						require.NoError(t, matrix.ValidateRange(res.Opinions, -1, 1))

						require.Equal(t, relBefore.ToRows(), rel.ToRows(), "relationships mutated")
						require.Equal(t, opBefore.ToRows(), op.ToRows(), "caller opinions mutated")
					})
				}
			}
		}
	}
}

// TestRun_FullGroups fills every group when the population is large enough.
func TestRun_FullGroups(t *testing.T) {
	t.Parallel()

	for _, g := range []governance.GroupSelector{governance.RandomGroup{}, governance.StarGroup{}} {
		res, err := governance.Run(uniformOpinions(t, 100, 6, 4), ring6(t),
			governance.WithGroupSize(5),
			governance.WithGroupOverlap(2),
			governance.WithGroupSelector(g),
			governance.WithStrictPopulation(),
			governance.WithSeed(8),
		)
		require.NoError(t, err, g.Name())
		for _, rd := range res.Rounds {
			require.Len(t, rd.Group, 5, g.Name())
		}
	}
}

// TestRun_SeedReproducible runs the same configuration twice.
func TestRun_SeedReproducible(t *testing.T) {
	t.Parallel()

	opts := []governance.Option{
		governance.WithGroupSize(3),
		governance.WithGroupOverlap(1),
		governance.WithDecisionSelector(governance.SnowballDecision{}),
		governance.WithGroupSelector(governance.StarGroup{}),
		governance.WithDecisionResolver(governance.StarResolver{}),
	}
	op := uniformOpinions(t, 20, 6, 1)

	a, err := governance.Run(op, ring6(t), append(opts, governance.WithSeed(42))...)
	require.NoError(t, err)
	b, err := governance.Run(op, ring6(t), append(opts, governance.WithRand(rand.New(rand.NewSource(42))))...)
	require.NoError(t, err)

	require.Equal(t, a.Rounds, b.Rounds)
	require.Equal(t, a.History.Map(), b.History.Map())
	require.Equal(t, a.Opinions.ToRows(), b.Opinions.ToRows())
}

// TestRun_Validation covers every pre-run failure.
func TestRun_Validation(t *testing.T) {
	t.Parallel()

	op := constant(t, 4, 3, 0.1)
	var typedNil *matrix.Dense
	tests := []struct {
		name string
		op   *matrix.Dense
		rel  *matrix.Dense
		opts []governance.Option
		want error
	}{
		{"relationships not square", op, mustRows(t, [][]float64{{0, 1, 0}, {1, 0, 0}}), nil, governance.ErrShapeMismatch},
		{"opinions wrong width", constant(t, 4, 2, 0), chain3(t), nil, governance.ErrShapeMismatch},
		{"opinions nil", typedNil, chain3(t), nil, governance.ErrShapeMismatch},
		{"overlap above size", op, chain3(t), []governance.Option{governance.WithGroupSize(2), governance.WithGroupOverlap(3)}, governance.ErrInvalidConfiguration},
		{"size below two", op, chain3(t), []governance.Option{governance.WithGroupSize(1)}, governance.ErrInvalidConfiguration},
		{"negative overlap", op, chain3(t), []governance.Option{governance.WithGroupOverlap(-1)}, governance.ErrInvalidConfiguration},
		{"asymmetric", op, mustRows(t, [][]float64{{0, 1, 0}, {0, 0, 0}, {0, 0, 0}}), nil, governance.ErrInvalidConfiguration},
		{"opinion out of range", constant(t, 4, 3, -1.01), chain3(t), nil, governance.ErrInvalidConfiguration},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := governance.Run(tc.op, tc.rel, tc.opts...)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

// TestRun_StrictPopulation surfaces the empty third group of the three-issue
// scenario as ErrInsufficientPopulation.
func TestRun_StrictPopulation(t *testing.T) {
	t.Parallel()

	_, err := governance.Run(constant(t, 4, 3, 0.2), chain3(t),
		governance.WithStrictPopulation(),
		governance.WithSeed(3),
	)
	require.ErrorIs(t, err, governance.ErrInsufficientPopulation)
}

// TestProcess_Steps walks the state machine round by round.
func TestProcess_Steps(t *testing.T) {
	t.Parallel()

	var hooked []int
	p, err := governance.NewProcess(constant(t, 8, 3, 0.3), chain3(t),
		governance.WithRoundHook(func(r governance.Round) { hooked = append(hooked, r.Index) }),
	)
	require.NoError(t, err)
	require.Equal(t, governance.SelectingDecision, p.Phase())
	require.False(t, p.Done())

	for i := 0; i < 3; i++ {
		rd, err := p.Step()
		require.NoError(t, err)
		require.Equal(t, i, rd.Index)
		require.Equal(t, governance.For, rd.Outcome)
		require.Equal(t, i+1, p.State().History.Len())
		require.Len(t, p.Rounds(), i+1)
	}
	require.True(t, p.Done())
	require.Equal(t, governance.Done, p.Phase())
	require.Equal(t, []int{0, 1, 2}, hooked)

	_, err = p.Step()
	require.ErrorIs(t, err, governance.ErrProcessDone)

	res := p.Result()
	require.Equal(t, 3, res.History.Len())
	require.Equal(t, "updating_opinions", governance.UpdatingOpinions.String())
	require.Equal(t, "phase(42)", governance.Phase(42).String())
}

// stuckSelector always proposes issue 0.
type stuckSelector struct{}

func (stuckSelector) Name() string { return "stuck" }
func (stuckSelector) SelectDecision(*governance.State) (int, error) { return 0, nil }

// crowdSelector returns every stakeholder regardless of size.
type crowdSelector struct{}

func (crowdSelector) Name() string { return "crowd" }
func (crowdSelector) SelectGroup(s *governance.State, _, _, _ int) ([]int, error) {
	return s.Stakeholders(), nil
}

// TestProcess_ContractViolations rejects misbehaving custom strategies.
func TestProcess_ContractViolations(t *testing.T) {
	t.Parallel()

	p, err := governance.NewProcess(constant(t, 4, 3, 0), chain3(t),
		governance.WithDecisionSelector(stuckSelector{}))
	require.NoError(t, err)
	_, err = p.Step()
	require.NoError(t, err)
	_, err = p.Step()
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
	require.Equal(t, governance.SelectingDecision, p.Phase())

	_, err = governance.Run(constant(t, 4, 3, 0), chain3(t),
		governance.WithGroupSelector(crowdSelector{}))
	require.ErrorIs(t, err, governance.ErrInvalidConfiguration)
}

var errTally = errors.New("tally unavailable")

// brokenResolver never reaches an outcome.
type brokenResolver struct{}

func (brokenResolver) Name() string { return "broken" }
func (brokenResolver) Resolve(*governance.State, int, []int) (governance.Outcome, error) {
	return 0, errTally
}

// TestProcess_FailedStepKeepsHistoryAndGroupsAligned records no hyperedge for
// an unresolved round and refuses to continue.
func TestProcess_FailedStepKeepsHistoryAndGroupsAligned(t *testing.T) {
	t.Parallel()

	p, err := governance.NewProcess(constant(t, 6, 3, 0.2), chain3(t),
		governance.WithDecisionResolver(brokenResolver{}),
		governance.WithSeed(1),
	)
	require.NoError(t, err)

	_, err = p.Step()
	require.ErrorIs(t, err, errTally)
	require.Equal(t, governance.Resolving, p.Phase())

	res := p.Result()
	require.Zero(t, res.History.Len())
	require.Zero(t, res.Groups.EdgeCount())
	require.Empty(t, res.Rounds)

	_, again := p.Step()
	require.ErrorIs(t, again, errTally)
	require.Equal(t, err, again)
	require.Zero(t, res.Groups.EdgeCount())
}

// TestRun_Logging emits one debug record per round plus a completion record.
func TestRun_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := governance.Run(constant(t, 6, 3, 0.1), chain3(t), governance.WithLogger(log))
	require.NoError(t, err)

	out := buf.String()
	require.Equal(t, 3, strings.Count(out, `"msg":"round complete"`))
	require.Contains(t, out, `"msg":"governance process complete"`)
	require.Contains(t, out, `"outcome":"for"`)
}

// TestOptions_PanicOnNil checks eager option validation.
func TestOptions_PanicOnNil(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { governance.WithDecisionSelector(nil) })
	require.Panics(t, func() { governance.WithGroupSelector(nil) })
	require.Panics(t, func() { governance.WithDecisionResolver(nil) })
	require.Panics(t, func() { governance.WithOpinionUpdater(nil) })
	require.Panics(t, func() { governance.WithRand(nil) })
	require.Panics(t, func() { governance.WithLogger(nil) })
	require.Panics(t, func() { governance.WithRoundHook(nil) })
}
