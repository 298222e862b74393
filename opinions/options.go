// SPDX-License-Identifier: MIT
// Package: governance/opinions
//
// options.go: functional options and the resolved generator config.
//
// Contract:
//   • Options are functional (type Option func(*genConfig)), applied in order,
//     last wins.
//   • Option constructors PANIC on meaningless inputs; generators never do.
//   • Determinism is explicit: every generator needs WithSeed or WithRand and
//     fails with ErrNeedRandSource otherwise.

package opinions

import (
	"math"
	"math/rand"

	"github.com/nwlandry/governance/rng"
)

// Deterministic defaults (named, no magic numbers).
const (
	defaultSigma   = 0.1  // spread of every truncated-normal opinion
	neighbourSigma = 0.25 // spread of greedy neighbour opinions
	opinionMin     = -1.0 // open lower bound of an opinion
	opinionMax     = 1.0  // open upper bound of an opinion
)

// Option customizes a generator.
type Option func(*genConfig)

// genConfig is the resolved set of generator knobs, passed by value.
type genConfig struct {
	rng   *rand.Rand
	sigma float64
}

func newGenConfig(opts ...Option) genConfig {
	cfg := genConfig{sigma: defaultSigma}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSeed seeds the generator through rng.FromSeed (0 ⇒ rng.DefaultSeed).
func WithSeed(seed int64) Option {
	return func(c *genConfig) { c.rng = rng.FromSeed(seed) }
}

// WithRand supplies the generator's RNG. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("opinions: WithRand(nil)")
	}
	return func(c *genConfig) { c.rng = r }
}

// WithSigma sets the standard deviation of the truncated-normal draws
// (default 0.1). Panics unless sigma is finite and > 0.
func WithSigma(sigma float64) Option {
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		panic("opinions: WithSigma(sigma<=0 or not finite)")
	}
	return func(c *genConfig) { c.sigma = sigma }
}
