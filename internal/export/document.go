package export

import (
	"fmt"

	"github.com/nwlandry/governance/experiment"
	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/matrix"
)

// Decision is one resolved issue in resolution order.
type Decision struct {
	Seq     int   `json:"seq" yaml:"seq" cbor:"seq"`
	Issue   int   `json:"issue" yaml:"issue" cbor:"issue"`
	Outcome int   `json:"outcome" yaml:"outcome" cbor:"outcome"`
	Group   []int `json:"group,omitempty" yaml:"group,omitempty" cbor:"group,omitempty"`
}

// Run is the serializable form of a governance.Result.
type Run struct {
	Seed         int64               `json:"seed,omitempty" yaml:"seed,omitempty" cbor:"seed,omitempty"`
	Stakeholders int                 `json:"stakeholders" yaml:"stakeholders" cbor:"stakeholders"`
	Issues       int                 `json:"issues" yaml:"issues" cbor:"issues"`
	Decisions    []Decision          `json:"decisions" yaml:"decisions" cbor:"decisions"`
	Outcomes     []float64           `json:"outcomes" yaml:"outcomes" cbor:"outcomes"`
	Opinions     [][]float64         `json:"opinions" yaml:"opinions" cbor:"opinions"`
	Summary      *experiment.Summary `json:"summary,omitempty" yaml:"summary,omitempty" cbor:"summary,omitempty"`
}

// NewRun flattens res. A group capped down to nobody is left out of its
// Decision.
func NewRun(seed int64, res *governance.Result) (Run, error) {
	if res == nil || res.History == nil || res.Groups == nil || res.Opinions == nil {
		return Run{}, fmt.Errorf("NewRun: incomplete result")
	}
	n, d := res.Opinions.Shape()
	outcomes, err := res.History.Vector(d)
	if err != nil {
		return Run{}, fmt.Errorf("NewRun: %w", err)
	}

	doc := Run{
		Seed:         seed,
		Stakeholders: n,
		Issues:       d,
		Decisions:    make([]Decision, 0, res.History.Len()),
		Outcomes:     outcomes,
		Opinions:     res.Opinions.ToRows(),
	}
	for seq, issue := range res.History.Order() {
		o, _ := res.History.Outcome(issue)
		group, err := res.Groups.Group(issue)
		if err != nil {
			return Run{}, fmt.Errorf("NewRun: %w", err)
		}
		if len(group) == 0 {
			group = nil
		}
		doc.Decisions = append(doc.Decisions, Decision{Seq: seq, Issue: issue, Outcome: int(o), Group: group})
	}
	return doc, nil
}

// Matrix is a named dense matrix, used by the generators.
type Matrix struct {
	Kind string      `json:"kind" yaml:"kind" cbor:"kind"`
	Seed int64       `json:"seed" yaml:"seed" cbor:"seed"`
	Rows [][]float64 `json:"rows" yaml:"rows" cbor:"rows"`
}

// NewMatrix wraps m.
func NewMatrix(kind string, seed int64, m *matrix.Dense) Matrix {
	return Matrix{Kind: kind, Seed: seed, Rows: m.ToRows()}
}

// Dense rebuilds the matrix.
func (m Matrix) Dense() (*matrix.Dense, error) {
	return matrix.NewFromRows(m.Rows)
}

// Experiment is the serializable result of a Monte Carlo batch.
type Experiment struct {
	ID         string               `json:"id,omitempty" yaml:"id,omitempty" cbor:"id,omitempty"`
	ConfigHash string               `json:"config_hash,omitempty" yaml:"config_hash,omitempty" cbor:"config_hash,omitempty"`
	Seed       int64                `json:"seed" yaml:"seed" cbor:"seed"`
	Runs       int                  `json:"runs" yaml:"runs" cbor:"runs"`
	Summaries  []experiment.Summary `json:"summaries" yaml:"summaries" cbor:"summaries"`
}
