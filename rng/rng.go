// Package rng - deterministic random utilities shared by the governance engine,
// the opinion generators and the Monte Carlo runner.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Safety: no panics on user input; sentinel errors only.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use Derive to create independent streams for parallel runs or workers.
package rng

import (
	"errors"
	"math"
	"math/rand"
)

// ErrEmptyPool is returned when a choice is requested from an empty candidate set.
var ErrEmptyPool = errors.New("rng: empty candidate pool")

// ErrBadWeights is returned when weights are negative, non-finite or misaligned.
var ErrBadWeights = errors.New("rng: invalid weights")

// DefaultSeed is the fixed “zero” seed used when callers pass seed==0.
// The value is arbitrary but stable to keep reproducible defaults.
const DefaultSeed int64 = 1

// FromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use DefaultSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func FromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = DefaultSeed
	}
	return rand.New(rand.NewSource(s))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed.
//
// We apply a SplitMix64-style avalanche mix to eliminate correlations between
// neighbouring stream ids.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	// SplitMix64-style finalizer; see Vigna 2014 for the constants.
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Derive creates an independent deterministic RNG stream from a parent seed
// and a stream identifier. Stream ids must be unique per parent.
//
// Usage:
//   - Call during setup (not in hot loops) to create per-run RNGs.
//
// Complexity: O(1).
func Derive(parent int64, stream uint64) *rand.Rand {
	if parent == 0 {
		parent = DefaultSeed
	}
	return rand.New(rand.NewSource(DeriveSeed(parent, stream)))
}

// orDefault substitutes the default stream for a nil RNG.
func orDefault(r *rand.Rand) *rand.Rand {
	if r == nil {
		return FromSeed(0)
	}
	return r
}

// ShuffleInts performs an in-place Fisher–Yates shuffle of a using r.
// If r==nil, a deterministic default stream is used (seed==0 policy).
//
// Complexity: O(n) time, O(1) extra space.
func ShuffleInts(a []int, r *rand.Rand) {
	n := len(a)
	if n <= 1 {
		return
	}
	r = orDefault(r)

	var i, j int
	for i = n - 1; i > 0; i-- {
		j = r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Sample draws k distinct elements uniformly without replacement from pool.
// The pool is not modified. k is clamped to [0, len(pool)].
// The result keeps draw order; callers sort it when they need a canonical set.
//
// Implementation:
//   - Partial Fisher–Yates over a private copy of pool: k swaps.
//
// Complexity: O(len(pool)) copy + O(k) draws.
func Sample(pool []int, k int, r *rand.Rand) []int {
	if k <= 0 || len(pool) == 0 {
		return []int{}
	}
	if k > len(pool) {
		k = len(pool)
	}
	r = orDefault(r)

	buf := make([]int, len(pool))
	copy(buf, pool)

	var i, j int
	n := len(buf)
	for i = 0; i < k; i++ {
		j = i + r.Intn(n-i)
		buf[i], buf[j] = buf[j], buf[i]
	}

	return buf[:k]
}

// Choice returns one element of pool chosen uniformly.
// Errors: ErrEmptyPool.
// Complexity: O(1).
func Choice(pool []int, r *rand.Rand) (int, error) {
	if len(pool) == 0 {
		return 0, ErrEmptyPool
	}
	return pool[orDefault(r).Intn(len(pool))], nil
}

// WeightedChoice returns pool[i] with probability weights[i]/Σweights.
// The weights need not be normalized. If every weight is zero the choice
// degrades to uniform, which keeps selection total on degenerate inputs.
//
// Errors: ErrEmptyPool, ErrBadWeights (length mismatch, negative or non-finite weight).
// Complexity: O(len(pool)).
func WeightedChoice(pool []int, weights []float64, r *rand.Rand) (int, error) {
	if len(pool) == 0 {
		return 0, ErrEmptyPool
	}
	if len(weights) != len(pool) {
		return 0, ErrBadWeights
	}

	var total float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, ErrBadWeights
		}
		total += w
	}
	r = orDefault(r)
	if total == 0 {
		return pool[r.Intn(len(pool))], nil
	}

	// Inverse-CDF walk; the last positive bucket absorbs rounding drift.
	u := r.Float64() * total
	last := -1
	var acc float64
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		acc += w
		if u < acc {
			return pool[i], nil
		}
	}

	return pool[last], nil
}

// TruncatedNormal draws from N(mean, std²) conditioned on lo < x < hi by
// rejection, matching the opinion generators' distribution.
// Callers must ensure the interval has non-negligible mass; std must be > 0.
//
// Complexity: expected O(1) for intervals covering the bulk of the mass.
func TruncatedNormal(mean, std, lo, hi float64, r *rand.Rand) float64 {
	r = orDefault(r)
	x := r.NormFloat64()*std + mean
	for x <= lo || x >= hi {
		x = r.NormFloat64()*std + mean
	}
	return x
}

// Uniform draws from U[lo, hi).
// Complexity: O(1).
func Uniform(lo, hi float64, r *rand.Rand) float64 {
	return lo + orDefault(r).Float64()*(hi-lo)
}
