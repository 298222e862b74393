// SPDX-License-Identifier: MIT
// Package: governance/opinions
//
// greedy.go: relationship-aware opinion seeding and the relationship
// matrix generator.
//
// Greedy seeding:
//   • Pick an unseeded issue at random and give it a positive opinion.
//   • Walk the relationship graph breadth-first from that seed; each newly
//     reached issue k, reached from issue j, gets an opinion centred on
//     sign(opinion on j)·rel[j,k]·c.
//   • When the walk runs out, reseed among the issues still unseeded.
//
// Greedy does this independently per stakeholder (c = 0.5, spread 0.25 on
// neighbours); UniformGreedy does it once for the whole population, steering
// by the sign of the population's summed opinion (c = 0.75).

package opinions

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/rng"
)

const (
	methodGreedy        = "Greedy"
	methodUniformGreedy = "UniformGreedy"
	methodRelationships = "Relationships"

	greedySeedMean  = 0.5
	greedyPull      = 0.5
	uniformSeedMean = 0.75
	uniformPull     = 0.75
)

// neighbours validates rel as a square symmetric matrix and returns, per
// issue, the ascending list of k≠j with rel[j,k] != 0.
func neighbours(method string, rel *matrix.Dense) ([][]int, error) {
	if err := matrix.ValidateSymmetric(rel, 0); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", method, ErrDimensionMismatch, err)
	}
	d := rel.Rows()
	adj := make([][]int, d)
	for j := 0; j < d; j++ {
		for k := 0; k < d; k++ {
			if v, _ := rel.At(j, k); k != j && v != 0 {
				adj[j] = append(adj[j], k)
			}
		}
	}
	return adj, nil
}

// walk runs the seeded breadth-first traversal over all d issues.
// seed(j) is called for every component root, spread(from, to) for every
// newly reached issue.
func walk(adj [][]int, r *rand.Rand, seed func(j int), spread func(from, to int)) {
	d := len(adj)
	seen := make([]bool, d)
	unseen := make([]int, d)
	for j := range unseen {
		unseen[j] = j
	}

	for len(unseen) > 0 {
		root, _ := rng.Choice(unseen, r)
		seed(root)
		seen[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			from := queue[0]
			queue = queue[1:]
			for _, to := range adj[from] {
				if seen[to] {
					continue
				}
				spread(from, to)
				seen[to] = true
				queue = append(queue, to)
			}
		}

		next := unseen[:0]
		for _, j := range unseen {
			if !seen[j] {
				next = append(next, j)
			}
		}
		unseen = next
	}
}

func sign(x float64) float64 { return math.Copysign(1, x) }

// Greedy seeds each stakeholder's opinions independently. Entries start near
// 0 and are then overwritten along that stakeholder's own walk.
func Greedy(n int, rel *matrix.Dense, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	adj, err := neighbours(methodGreedy, rel)
	if err != nil {
		return nil, err
	}
	m, err := preflight(methodGreedy, n, len(adj), cfg)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		fillRow(m, i, cfg.sigma, cfg, func(int) float64 { return 0 })
		walk(adj, cfg.rng,
			func(j int) {
				_ = m.Set(i, j, rng.TruncatedNormal(greedySeedMean, cfg.sigma, opinionMin, opinionMax, cfg.rng))
			},
			func(from, to int) {
				prev, _ := m.At(i, from)
				g, _ := rel.At(from, to)
				mean := sign(prev) * g * greedyPull
				_ = m.Set(i, to, rng.TruncatedNormal(mean, neighbourSigma, opinionMin, opinionMax, cfg.rng))
			},
		)
	}
	return m, nil
}

// UniformGreedy runs one walk for the whole population, so every stakeholder
// shares the same coherent stance up to noise.
func UniformGreedy(n int, rel *matrix.Dense, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	adj, err := neighbours(methodUniformGreedy, rel)
	if err != nil {
		return nil, err
	}
	m, err := preflight(methodUniformGreedy, n, len(adj), cfg)
	if err != nil {
		return nil, err
	}

	column := func(j int, mean float64) {
		for i := 0; i < n; i++ {
			_ = m.Set(i, j, rng.TruncatedNormal(mean, cfg.sigma, opinionMin, opinionMax, cfg.rng))
		}
	}
	walk(adj, cfg.rng,
		func(j int) { column(j, uniformSeedMean) },
		func(from, to int) {
			var sensing float64
			for i := 0; i < n; i++ {
				v, _ := m.At(i, from)
				sensing += v
			}
			g, _ := rel.At(from, to)
			column(to, sign(sensing)*g*uniformPull)
		},
	)
	return m, nil
}

// Relationships samples a d×d symmetric matrix with entries in {-1,0,1}.
// Each pair i<j is linked with probability p; a link is contradictory (−1)
// with probability pNeg and reinforcing (+1) otherwise. The diagonal is 0.
func Relationships(d int, p, pNeg float64, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	if err := checkProbability(methodRelationships, "p", p); err != nil {
		return nil, err
	}
	if err := checkProbability(methodRelationships, "pNeg", pNeg); err != nil {
		return nil, err
	}
	m, err := preflight(methodRelationships, d, d, cfg)
	if err != nil {
		return nil, err
	}

	var v float64
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			if cfg.rng.Float64() >= p {
				continue
			}
			v = 1
			if cfg.rng.Float64() < pNeg {
				v = -1
			}
			_ = m.Set(i, j, v)
			_ = m.Set(j, i, v)
		}
	}
	return m, nil
}
