// Package: governance
//
// process.go: the Governance Process state machine and the Run facade.
//
// MAIN DESCRIPTION:
//   - A Process owns a working copy of the opinions, the Relationships, an
//     empty History and an empty Group Hypergraph. Each Step runs one round:
//     SelectingDecision → SelectingGroup → Resolving → UpdatingOpinions, and
//     adds exactly one History entry and one hyperedge.
//   - After D rounds the Process is Done and Result hands everything over.
//
// Implementation:
//   - Stage 1 (NewProcess): validate shapes, then configuration, then values.
//     Nothing is cloned or mutated before validation passes.
//   - Stage 2 (Step): run the four strategies, checking each one's output
//     contract (issue undecided and in range, group bounded and in range).
//
// Complexity:
//   - Run is D rounds; each round is dominated by the chosen strategies,
//     O(N + D²) for the built-in ones.

package governance

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/nwlandry/governance/hypergraph"
	"github.com/nwlandry/governance/matrix"
)

// Phase is the state of a Process.
type Phase int

const (
	Initializing Phase = iota
	SelectingDecision
	SelectingGroup
	Resolving
	UpdatingOpinions
	Done
)

var phaseNames = [...]string{
	Initializing:      "initializing",
	SelectingDecision: "selecting_decision",
	SelectingGroup:    "selecting_group",
	Resolving:         "resolving",
	UpdatingOpinions:  "updating_opinions",
	Done:              "done",
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Round is the record of one completed iteration.
type Round struct {
	Index   int
	Issue   int
	Group   []int
	Outcome Outcome
}

// Result is what a finished run hands to the caller.
type Result struct {
	History  *History
	Opinions *matrix.Dense
	Groups   *hypergraph.Hypergraph
	Rounds   []Round
}

// NewState validates the inputs and returns a fresh State over private
// copies of both matrices with an empty History and Group Hypergraph.
//
// Errors:
//   - ErrShapeMismatch: relationships not square, opinions nil or with
//     Cols() != D.
//   - ErrInvalidConfiguration: relationships asymmetric or not ternary,
//     opinions outside [-1,1].
func NewState(opinions, relationships *matrix.Dense, r *rand.Rand) (*State, error) {
	if err := validateShapes(opinions, relationships); err != nil {
		return nil, err
	}
	return newState(opinions, relationships, r)
}

func validateShapes(opinions, relationships *matrix.Dense) error {
	if err := matrix.ValidateSquare(relationships); err != nil {
		return fmt.Errorf("%w: relationships: %w", ErrShapeMismatch, err)
	}
	if err := matrix.ValidateCols(opinions, relationships.Rows()); err != nil {
		return fmt.Errorf("%w: opinions: %w", ErrShapeMismatch, err)
	}
	return nil
}

func newState(opinions, relationships *matrix.Dense, r *rand.Rand) (*State, error) {
	rel, err := NewRelationships(relationships)
	if err != nil {
		return nil, err
	}
	if err = matrix.ValidateRange(opinions, -1, 1); err != nil {
		return nil, fmt.Errorf("%w: opinions: %w", ErrInvalidConfiguration, err)
	}

	n := opinions.Rows()
	stakeholders := make([]int, n)
	for i := range stakeholders {
		stakeholders[i] = i
	}

	return &State{
		Relationships: rel,
		Opinions:      opinions.CloneDense(),
		History:       NewHistory(),
		Groups:        hypergraph.New(hypergraph.WithCapacity(rel.Issues())),
		Rand:          r,
		stakeholders:  stakeholders,
	}, nil
}

// Process is a stepwise Governance Process. It is not safe for concurrent use.
type Process struct {
	cfg    config
	state  *State
	groups *hypergraph.Hypergraph
	phase  Phase
	rounds []Round
	err    error
}

// NewProcess validates the inputs and prepares a Process in the
// SelectingDecision phase. matrix.Dense has no empty shape, so there is always
// at least one issue to decide. The caller's matrices are never mutated.
func NewProcess(opinions, relationships *matrix.Dense, opts ...Option) (*Process, error) {
	cfg := newConfig(opts...)
	if err := validateShapes(opinions, relationships); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	st, err := newState(opinions, relationships, cfg.rand)
	if err != nil {
		return nil, err
	}

	p := &Process{
		cfg:    cfg,
		state:  st,
		groups: st.Groups.(*hypergraph.Hypergraph),
		phase:  SelectingDecision,
		rounds: make([]Round, 0, st.Issues()),
	}
	cfg.log.Debug("governance process ready",
		slog.Int("issues", st.Issues()),
		slog.Int("stakeholders", opinions.Rows()),
		slog.Int("group_size", cfg.size),
		slog.Int("group_overlap", cfg.overlap),
		slog.String("decision", cfg.decision.Name()),
		slog.String("group", cfg.group.Name()),
		slog.String("resolver", cfg.resolver.Name()),
		slog.String("updater", cfg.updater.Name()),
	)
	return p, nil
}

// Phase reports the current phase.
func (p *Process) Phase() Phase { return p.phase }

// Done reports whether every issue has been decided.
func (p *Process) Done() bool { return p.phase == Done }

// State exposes the live state, mainly for inspection between steps.
func (p *Process) State() *State { return p.state }

// Step runs one full round and returns its record.
//
// Errors:
//   - ErrProcessDone when called after the last round.
//   - ErrInvalidConfiguration when a strategy breaks its contract.
//   - ErrInsufficientPopulation from strict group selectors.
//   - Any strategy error, wrapped with the phase it occurred in.
//
// A failed Step leaves the Process in the phase that failed and every later
// Step returns the same error. The hyperedge of a round is added only once its
// outcome is recorded, so History and Groups never disagree.
func (p *Process) Step() (Round, error) {
	if p.err != nil {
		return Round{}, p.err
	}
	if p.phase == Done {
		return Round{}, ErrProcessDone
	}
	st := p.state
	d := st.Issues()

	p.phase = SelectingDecision
	issue, err := p.cfg.decision.SelectDecision(st)
	if err != nil {
		return Round{}, p.fail(err)
	}
	if issue < 0 || issue >= d {
		return Round{}, p.fail(configErrorf("%s selected issue %d outside [0,%d)", p.cfg.decision.Name(), issue, d))
	}
	if st.History.Has(issue) {
		return Round{}, p.fail(configErrorf("%s re-selected decided issue %d", p.cfg.decision.Name(), issue))
	}

	p.phase = SelectingGroup
	group, err := p.cfg.group.SelectGroup(st, issue, p.cfg.size, p.cfg.overlap)
	if err != nil {
		return Round{}, p.fail(err)
	}
	if err = p.checkGroup(group); err != nil {
		return Round{}, p.fail(err)
	}
	group = sortedCopy(group)

	p.phase = Resolving
	outcome, err := p.cfg.resolver.Resolve(st, issue, group)
	if err != nil {
		return Round{}, p.fail(err)
	}
	if err = st.History.Record(issue, outcome); err != nil {
		return Round{}, p.fail(err)
	}
	if err = st.Groups.AddGroup(issue, group); err != nil {
		return Round{}, p.fail(err)
	}

	p.phase = UpdatingOpinions
	if err = p.cfg.updater.Update(st, issue, group, outcome); err != nil {
		return Round{}, p.fail(err)
	}

	rd := Round{Index: len(p.rounds), Issue: issue, Group: group, Outcome: outcome}
	p.rounds = append(p.rounds, rd)
	p.cfg.log.Debug("round complete",
		slog.Int("round", rd.Index),
		slog.Int("issue", issue),
		slog.Int("group_size", len(group)),
		slog.String("outcome", outcome.String()),
	)
	for _, h := range p.cfg.hooks {
		h(rd)
	}

	if st.History.Len() == d {
		p.phase = Done
	} else {
		p.phase = SelectingDecision
	}
	return rd, nil
}

// checkGroup enforces |group| ≤ size, distinct members and ids in [0,N).
func (p *Process) checkGroup(group []int) error {
	name := p.cfg.group.Name()
	if len(group) > p.cfg.size {
		return configErrorf("%s returned %d members, size is %d", name, len(group), p.cfg.size)
	}
	n := len(p.state.stakeholders)
	seen := make(map[int]bool, len(group))
	for _, s := range group {
		if s < 0 || s >= n {
			return configErrorf("%s returned stakeholder %d outside [0,%d)", name, s, n)
		}
		if seen[s] {
			return configErrorf("%s returned stakeholder %d twice", name, s)
		}
		seen[s] = true
	}
	return nil
}

func (p *Process) fail(err error) error {
	p.err = fmt.Errorf("round %d: %s: %w", len(p.rounds), p.phase, err)
	return p.err
}

// Rounds returns the completed rounds so far.
func (p *Process) Rounds() []Round {
	out := make([]Round, len(p.rounds))
	copy(out, p.rounds)
	return out
}

// Result returns the run's History, working opinions, Group Hypergraph and
// rounds. The objects are live; once the Process is Done they belong to the
// caller. After a failed Step the opinions may hold a partial update.
func (p *Process) Result() *Result {
	return &Result{
		History:  p.state.History,
		Opinions: p.state.Opinions,
		Groups:   p.groups,
		Rounds:   p.Rounds(),
	}
}

// Run executes a full Governance Process: exactly D rounds, one per issue.
//
// Example:
//
//	res, err := governance.Run(op, rel,
//		governance.WithGroupSize(5),
//		governance.WithGroupOverlap(2),
//		governance.WithDecisionSelector(governance.SnowballDecision{}),
//		governance.WithSeed(42),
//	)
func Run(opinions, relationships *matrix.Dense, opts ...Option) (*Result, error) {
	p, err := NewProcess(opinions, relationships, opts...)
	if err != nil {
		return nil, err
	}
	for !p.Done() {
		if _, err = p.Step(); err != nil {
			return nil, err
		}
	}
	res := p.Result()
	p.cfg.log.Info("governance process complete",
		slog.Int("rounds", len(res.Rounds)),
		slog.Int("stakeholders_involved", res.Groups.NodeCount()),
	)
	return res, nil
}
