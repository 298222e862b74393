// Package: governance
//
// group.go: Group Selector strategies.
//
// Both strategies share one capping rule:
//
//	old     = the overlap pool (strategy specific), sorted
//	new     = all stakeholders − old, sorted
//	num_old = min(overlap, |old|)
//	num_new = min(size − num_old, |new|)
//
// Members are drawn without replacement and returned sorted. When the fresh
// pool is too small the group is capped silently; with strict population
// checking the selector fails with ErrInsufficientPopulation instead.

package governance

import (
	"fmt"
	"sort"

	"github.com/nwlandry/governance/rng"
)

// Strategy names accepted by ParseGroupSelector.
const (
	GroupRandom = "random"
	GroupStar   = "star"
)

// ParseGroupSelector maps a strategy name onto its implementation.
// The returned selector caps groups silently; see RandomGroup.Strict.
func ParseGroupSelector(name string) (GroupSelector, error) {
	switch name {
	case GroupRandom:
		return RandomGroup{}, nil
	case GroupStar:
		return StarGroup{}, nil
	default:
		return nil, configErrorf("unknown group selector %q", name)
	}
}

// RandomGroup draws the overlap from everyone who has sat in any prior group.
type RandomGroup struct {
	// Strict turns a short fresh pool into ErrInsufficientPopulation.
	Strict bool
}

// Name implements GroupSelector.
func (RandomGroup) Name() string { return GroupRandom }

// SelectGroup implements GroupSelector.
func (g RandomGroup) SelectGroup(s *State, issue, size, overlap int) ([]int, error) {
	return drawGroup(s, s.Groups.Nodes(), issue, size, overlap, g.Strict)
}

// StarGroup draws the overlap only from members of groups that decided issues
// directly related to the current one.
type StarGroup struct {
	Strict bool
}

// Name implements GroupSelector.
func (StarGroup) Name() string { return GroupStar }

// SelectGroup implements GroupSelector.
func (g StarGroup) SelectGroup(s *State, issue, size, overlap int) ([]int, error) {
	edges := s.Groups.EdgesForIssues(s.Relationships.Related(issue))
	return drawGroup(s, s.Groups.MembersOf(edges), issue, size, overlap, g.Strict)
}

// drawGroup applies the capping arithmetic to the given overlap pool.
func drawGroup(s *State, old []int, issue, size, overlap int, strict bool) ([]int, error) {
	sort.Ints(old)
	inOld := make(map[int]bool, len(old))
	for _, p := range old {
		inOld[p] = true
	}
	fresh := make([]int, 0, len(s.stakeholders))
	for _, p := range s.stakeholders {
		if !inOld[p] {
			fresh = append(fresh, p)
		}
	}

	numOld := min(overlap, len(old))
	want := size - numOld
	numNew := min(want, len(fresh))
	if strict && numNew < want {
		return nil, fmt.Errorf("issue %d: need %d new stakeholders, %d available: %w",
			issue, want, len(fresh), ErrInsufficientPopulation)
	}

	group := make([]int, 0, numOld+numNew)
	group = append(group, rng.Sample(old, numOld, s.Rand)...)
	group = append(group, rng.Sample(fresh, numNew, s.Rand)...)
	sort.Ints(group)
	return group, nil
}
