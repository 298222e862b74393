// Package: governance
//
// options.go: functional options for Run and NewProcess.
//
// Contract:
//   • Options are functional (type Option func(*config)).
//   • Constructors PANIC on nil arguments (strategies, RNG, logger, hook);
//     those are programmer errors.
//   • Numeric parameters are validated by NewProcess and reported as
//     ErrInvalidConfiguration, since they usually come from user config.
//   • Determinism is explicit: WithSeed or WithRand; the default is the
//     fixed rng.DefaultSeed stream.

package governance

import (
	"log/slog"
	"math/rand"

	"github.com/nwlandry/governance/rng"
)

// Default parameters applied when no option overrides them.
const (
	DefaultGroupSize    = 2
	DefaultGroupOverlap = 0
)

// Option customizes a Process.
type Option func(*config)

type config struct {
	size     int
	overlap  int
	decision DecisionSelector
	group    GroupSelector
	resolver DecisionResolver
	updater  OpinionUpdater
	rand     *rand.Rand
	strict   bool
	log      *slog.Logger
	hooks    []func(Round)
}

func newConfig(opts ...Option) config {
	c := config{
		size:     DefaultGroupSize,
		overlap:  DefaultGroupOverlap,
		decision: RandomDecision{},
		group:    RandomGroup{},
		resolver: AverageResolver{},
		updater:  AverageUpdater{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rand == nil {
		c.rand = rng.FromSeed(0)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.strict {
		c.group = strictGroup(c.group)
	}
	return c
}

// validate checks the numeric parameters.
func (c config) validate() error {
	switch {
	case c.size < 2:
		return configErrorf("group size %d < 2", c.size)
	case c.overlap < 0:
		return configErrorf("group overlap %d < 0", c.overlap)
	case c.overlap > c.size:
		return configErrorf("group overlap %d > group size %d", c.overlap, c.size)
	}
	return nil
}

// strictGroup switches the built-in selectors to strict population checking.
// Custom selectors are returned unchanged.
func strictGroup(g GroupSelector) GroupSelector {
	switch v := g.(type) {
	case RandomGroup:
		v.Strict = true
		return v
	case StarGroup:
		v.Strict = true
		return v
	default:
		return g
	}
}

// WithGroupSize sets the number of stakeholders per decision group (≥ 2).
func WithGroupSize(n int) Option {
	return func(c *config) { c.size = n }
}

// WithGroupOverlap sets how many members are drawn from the overlap pool
// (0 ≤ overlap ≤ size).
func WithGroupOverlap(n int) Option {
	return func(c *config) { c.overlap = n }
}

// WithDecisionSelector sets the issue selection strategy.
func WithDecisionSelector(d DecisionSelector) Option {
	if d == nil {
		panic("governance: WithDecisionSelector(nil)")
	}
	return func(c *config) { c.decision = d }
}

// WithGroupSelector sets the group assembly strategy.
func WithGroupSelector(g GroupSelector) Option {
	if g == nil {
		panic("governance: WithGroupSelector(nil)")
	}
	return func(c *config) { c.group = g }
}

// WithDecisionResolver sets the outcome strategy.
func WithDecisionResolver(r DecisionResolver) Option {
	if r == nil {
		panic("governance: WithDecisionResolver(nil)")
	}
	return func(c *config) { c.resolver = r }
}

// WithOpinionUpdater sets the opinion propagation strategy.
func WithOpinionUpdater(u OpinionUpdater) Option {
	if u == nil {
		panic("governance: WithOpinionUpdater(nil)")
	}
	return func(c *config) { c.updater = u }
}

// WithSeed seeds the run's RNG through rng.FromSeed (0 ⇒ rng.DefaultSeed).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rand = rng.FromSeed(seed) }
}

// WithRand supplies the run's RNG. The Process becomes its only user.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("governance: WithRand(nil)")
	}
	return func(c *config) { c.rand = r }
}

// WithStrictPopulation makes the built-in group selectors fail with
// ErrInsufficientPopulation instead of capping a group below its size.
func WithStrictPopulation() Option {
	return func(c *config) { c.strict = true }
}

// WithLogger routes per-round debug records and the completion record to l.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("governance: WithLogger(nil)")
	}
	return func(c *config) { c.log = l }
}

// WithRoundHook registers fn to be called after every completed round.
// Hooks run synchronously in registration order.
func WithRoundHook(fn func(Round)) Option {
	if fn == nil {
		panic("governance: WithRoundHook(nil)")
	}
	return func(c *config) { c.hooks = append(c.hooks, fn) }
}
