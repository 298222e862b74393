package governance

import (
	"fmt"
	"math"
	"sort"

	"github.com/nwlandry/governance/matrix"
)

// Strategy names accepted by ParseDecisionResolver.
const (
	ResolveAverage = "average"
	ResolveStar    = "star"
)

// ParseDecisionResolver maps a strategy name onto its implementation.
func ParseDecisionResolver(name string) (DecisionResolver, error) {
	switch name {
	case ResolveAverage:
		return AverageResolver{}, nil
	case ResolveStar:
		return StarResolver{}, nil
	default:
		return nil, configErrorf("unknown decision resolver %q", name)
	}
}

// sortedCopy returns group in ascending order without touching the caller's slice.
func sortedCopy(group []int) []int {
	out := make([]int, len(group))
	copy(out, group)
	sort.Ints(out)
	return out
}

// groupMean returns the mean opinion of group on issue k; 0 for an empty group.
func groupMean(op *matrix.Dense, group []int, k int) (float64, error) {
	if len(group) == 0 {
		return 0, nil
	}
	sum, err := matrix.ColSum(op, group, k)
	if err != nil {
		return 0, err
	}
	return sum / float64(len(group)), nil
}

// AverageResolver adopts the issue when the group's summed opinion is >= 0.
// A zero sum, including the empty group, resolves For.
type AverageResolver struct{}

// Name implements DecisionResolver.
func (AverageResolver) Name() string { return ResolveAverage }

// Resolve implements DecisionResolver.
func (AverageResolver) Resolve(s *State, issue int, group []int) (Outcome, error) {
	sum, err := matrix.ColSum(s.Opinions, sortedCopy(group), issue)
	if err != nil {
		return For, fmt.Errorf("average resolver: %w", err)
	}
	return outcomeOf(sum), nil
}

// StarResolver picks the outcome most coherent with the group's views on the
// related issues. For c in {For, Against} it scores
//
//	cost(c) = Σ_{k: rel[issue,k] != 0} |rel[issue,k]·c − mean_group(k)|
//
// and returns the cheaper one. Equal costs, including the case of no related
// issues, defer to the AverageResolver verdict on the issue itself.
type StarResolver struct{}

// Name implements DecisionResolver.
func (StarResolver) Name() string { return ResolveStar }

// Resolve implements DecisionResolver.
func (StarResolver) Resolve(s *State, issue int, group []int) (Outcome, error) {
	members := sortedCopy(group)
	var costFor, costAgainst float64
	for _, k := range s.Relationships.Related(issue) {
		mean, err := groupMean(s.Opinions, members, k)
		if err != nil {
			return For, fmt.Errorf("star resolver: %w", err)
		}
		r := float64(s.Relationships.At(issue, k))
		costFor += math.Abs(r*For.Float() - mean)
		costAgainst += math.Abs(r*Against.Float() - mean)
	}

	switch {
	case costFor < costAgainst:
		return For, nil
	case costAgainst < costFor:
		return Against, nil
	default:
		return AverageResolver{}.Resolve(s, issue, members)
	}
}
