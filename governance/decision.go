// Package: governance
//
// decision.go: Decision Selector strategies.
//
// Every strategy restricts itself to History.Unresolved(D), so the no
// double-decision property holds by construction. The Process checks it
// again and treats a violation as ErrInvalidConfiguration.
//
// Strategies:
//   • random    - uniform over unresolved issues.
//   • sentiment - weighted by mean |opinion| per unresolved column.
//   • degree    - weighted by Σ_k |rel[j,k]| per unresolved issue.
//   • snowball  - uniform over unresolved neighbours of decided issues;
//                 uniform over all unresolved issues when that pool is empty.
//
// Weighted strategies fall back to uniform when every weight is zero.

package governance

import (
	"fmt"
	"sort"

	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/rng"
)

// Strategy names accepted by ParseDecisionSelector.
const (
	DecisionRandom    = "random"
	DecisionSentiment = "sentiment"
	DecisionDegree    = "degree"
	DecisionSnowball  = "snowball"
)

// ParseDecisionSelector maps a strategy name onto its implementation.
func ParseDecisionSelector(name string) (DecisionSelector, error) {
	switch name {
	case DecisionRandom:
		return RandomDecision{}, nil
	case DecisionSentiment:
		return SentimentDecision{}, nil
	case DecisionDegree:
		return DegreeDecision{}, nil
	case DecisionSnowball:
		return SnowballDecision{}, nil
	default:
		return nil, configErrorf("unknown decision selector %q", name)
	}
}

// unresolved returns the candidate pool or ErrProcessDone when it is empty.
func unresolved(s *State) ([]int, error) {
	pool := s.History.Unresolved(s.Issues())
	if len(pool) == 0 {
		return nil, ErrProcessDone
	}
	return pool, nil
}

// RandomDecision picks uniformly among unresolved issues.
type RandomDecision struct{}

// Name implements DecisionSelector.
func (RandomDecision) Name() string { return DecisionRandom }

// SelectDecision implements DecisionSelector.
func (RandomDecision) SelectDecision(s *State) (int, error) {
	pool, err := unresolved(s)
	if err != nil {
		return 0, err
	}
	return rng.Choice(pool, s.Rand)
}

// SentimentDecision weights each unresolved issue j by the population mean of
// |opinion[i,j]|. Strongly felt issues come up first.
type SentimentDecision struct{}

// Name implements DecisionSelector.
func (SentimentDecision) Name() string { return DecisionSentiment }

// SelectDecision implements DecisionSelector.
func (SentimentDecision) SelectDecision(s *State) (int, error) {
	pool, err := unresolved(s)
	if err != nil {
		return 0, err
	}
	strength, err := matrix.ColAbsMeans(s.Opinions)
	if err != nil {
		return 0, fmt.Errorf("sentiment: %w", err)
	}
	weights := make([]float64, len(pool))
	for i, j := range pool {
		weights[i] = strength[j]
	}
	return rng.WeightedChoice(pool, weights, s.Rand)
}

// DegreeDecision weights each unresolved issue by its relationship degree.
type DegreeDecision struct{}

// Name implements DecisionSelector.
func (DegreeDecision) Name() string { return DecisionDegree }

// SelectDecision implements DecisionSelector.
func (DegreeDecision) SelectDecision(s *State) (int, error) {
	pool, err := unresolved(s)
	if err != nil {
		return 0, err
	}
	weights := make([]float64, len(pool))
	for i, j := range pool {
		weights[i] = float64(s.Relationships.Degree(j))
	}
	return rng.WeightedChoice(pool, weights, s.Rand)
}

// SnowballDecision grows the agenda outward from what has been decided.
type SnowballDecision struct{}

// Name implements DecisionSelector.
func (SnowballDecision) Name() string { return DecisionSnowball }

// SelectDecision implements DecisionSelector.
func (SnowballDecision) SelectDecision(s *State) (int, error) {
	pool, err := unresolved(s)
	if err != nil {
		return 0, err
	}
	if s.History.Len() == 0 {
		return rng.Choice(pool, s.Rand)
	}
	neighbours := snowballPool(s)
	if len(neighbours) == 0 {
		return rng.Choice(pool, s.Rand)
	}
	return rng.Choice(neighbours, s.Rand)
}

// snowballPool is the sorted set of unresolved issues related to any decided one.
func snowballPool(s *State) []int {
	seen := make(map[int]bool)
	for _, dec := range s.History.Order() {
		for _, k := range s.Relationships.Related(dec) {
			if !s.History.Has(k) {
				seen[k] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
