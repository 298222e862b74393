package governance

import (
	"math/rand"

	"github.com/nwlandry/governance/matrix"
)

// GroupHistory is the narrow view of the Group Hypergraph the engine needs.
// Edge ids are issue ids. *hypergraph.Hypergraph satisfies it.
type GroupHistory interface {
	// AddGroup records members as the decision group for issue.
	AddGroup(issue int, members []int) error
	// Nodes returns every stakeholder that sat in any group, ascending.
	Nodes() []int
	// Edges returns every decided issue in insertion order.
	Edges() []int
	// EdgesForIssues filters issues down to those with a recorded group.
	EdgesForIssues(issues []int) []int
	// MembersOf returns the sorted union of the members of edges.
	MembersOf(edges []int) []int
}

// State is everything a strategy may consult during one round.
// Strategies must treat Relationships, History and Groups as read-only;
// only an OpinionUpdater may write Opinions.
type State struct {
	Relationships *Relationships
	Opinions      *matrix.Dense
	History       *History
	Groups        GroupHistory
	Rand          *rand.Rand

	stakeholders []int
}

// Stakeholders returns the ids [0, N) in ascending order.
func (s *State) Stakeholders() []int {
	out := make([]int, len(s.stakeholders))
	copy(out, s.stakeholders)
	return out
}

// Issues returns D.
func (s *State) Issues() int { return s.Relationships.Issues() }

// DecisionSelector picks the next undecided issue.
type DecisionSelector interface {
	Name() string
	SelectDecision(s *State) (int, error)
}

// GroupSelector assembles the voting group for issue.
// The returned slice holds at most size distinct stakeholders.
type GroupSelector interface {
	Name() string
	SelectGroup(s *State, issue, size, overlap int) ([]int, error)
}

// DecisionResolver turns the group's opinions into an outcome.
type DecisionResolver interface {
	Name() string
	Resolve(s *State, issue int, group []int) (Outcome, error)
}

// OpinionUpdater writes the consequences of outcome back into s.Opinions.
type OpinionUpdater interface {
	Name() string
	Update(s *State, issue int, group []int, outcome Outcome) error
}
