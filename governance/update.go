package governance

import (
	"fmt"

	"github.com/nwlandry/governance/matrix"
)

// Strategy names accepted by ParseOpinionUpdater.
const (
	UpdateAverage = "average"
	UpdateStar    = "star"
)

// ParseOpinionUpdater maps a strategy name onto its implementation.
func ParseOpinionUpdater(name string) (OpinionUpdater, error) {
	switch name {
	case UpdateAverage:
		return AverageUpdater{}, nil
	case UpdateStar:
		return StarUpdater{}, nil
	default:
		return nil, configErrorf("unknown opinion updater %q", name)
	}
}

// AverageUpdater collapses the group onto a single scalar: every member's
// whole opinion row (all D issues) is overwritten with the mean of the
// group's |group|×D sub-matrix taken before the update.
// An empty group is left alone.
type AverageUpdater struct{}

// Name implements OpinionUpdater.
func (AverageUpdater) Name() string { return UpdateAverage }

// Update implements OpinionUpdater.
func (AverageUpdater) Update(s *State, _ int, group []int, _ Outcome) error {
	if len(group) == 0 {
		return nil
	}
	members := sortedCopy(group)
	cols := make([]int, s.Opinions.Cols())
	for j := range cols {
		cols[j] = j
	}
	sub, err := s.Opinions.Induced(members, cols)
	if err != nil {
		return fmt.Errorf("average updater: %w", err)
	}
	mean, err := matrix.Mean(sub)
	if err != nil {
		return fmt.Errorf("average updater: %w", err)
	}
	for _, p := range members {
		for _, j := range cols {
			if err = s.Opinions.Set(p, j, mean); err != nil {
				return fmt.Errorf("average updater: %w", err)
			}
		}
	}
	return nil
}

// StarUpdater snaps each member's opinion on every related issue k to
// rel[issue,k]·outcome. Unrelated issues, and the decided issue itself,
// keep their values.
type StarUpdater struct{}

// Name implements OpinionUpdater.
func (StarUpdater) Name() string { return UpdateStar }

// Update implements OpinionUpdater.
func (StarUpdater) Update(s *State, issue int, group []int, outcome Outcome) error {
	related := s.Relationships.Related(issue)
	for _, p := range group {
		for _, k := range related {
			v := float64(s.Relationships.At(issue, k)) * outcome.Float()
			if err := s.Opinions.Set(p, k, v); err != nil {
				return fmt.Errorf("star updater: %w", err)
			}
		}
	}
	return nil
}
