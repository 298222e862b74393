package config

import (
	"fmt"
	"math"

	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/opinions"
	"github.com/nwlandry/governance/rng"
)

// Population streams, so the relationship matrix does not shift when the
// opinion generator changes.
const (
	streamRelationships uint64 = iota + 1
	streamPreferences
	streamOpinions
)

// Build generates the relationship matrix and the initial opinions described
// by p, deterministically from seed.
func (p PopulationConfig) Build(seed int64) (op, rel *matrix.Dense, err error) {
	if !(p.Sigma > 0) || math.IsInf(p.Sigma, 1) {
		return nil, nil, fmt.Errorf("sigma=%g must be positive and finite", p.Sigma)
	}
	rel, err = opinions.Relationships(p.Issues, p.LinkProbability, p.NegativeProbability,
		opinions.WithRand(rng.Derive(seed, streamRelationships)))
	if err != nil {
		return nil, nil, fmt.Errorf("relationships: %w", err)
	}

	gen := []opinions.Option{
		opinions.WithRand(rng.Derive(seed, streamOpinions)),
		opinions.WithSigma(p.Sigma),
	}
	var prefs []float64
	switch p.Generator {
	case "polarized", "mixed", "incoherent":
		prefs, err = opinions.Preferences(p.Issues, opinions.WithRand(rng.Derive(seed, streamPreferences)))
		if err != nil {
			return nil, nil, fmt.Errorf("preferences: %w", err)
		}
	}

	switch p.Generator {
	case "random":
		op, err = opinions.Random(p.Stakeholders, p.Issues, gen...)
	case "polarized":
		op, err = opinions.Polarized(p.Stakeholders, p.Issues, prefs, p.Inform, p.Polarization, gen...)
	case "mixed":
		op, err = opinions.Mixed(p.Stakeholders, p.Issues, prefs, p.Inform, p.Polarization, gen...)
	case "incoherent":
		op, err = opinions.Incoherent(p.Stakeholders, p.Issues, prefs, gen...)
	case "greedy":
		op, err = opinions.Greedy(p.Stakeholders, rel, gen...)
	case "uniform_greedy":
		op, err = opinions.UniformGreedy(p.Stakeholders, rel, gen...)
	default:
		err = fmt.Errorf("unknown generator %q", p.Generator)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opinions: %w", err)
	}
	return op, rel, nil
}
