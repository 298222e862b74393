// SPDX-License-Identifier: MIT
// Package: governance/opinions
//
// errors.go: sentinel errors for the opinion and relationship generators.
//
// Error policy:
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach the generator name and parameters with %w.
//   • Generators never panic; option constructors do on meaningless input.

package opinions

import "errors"

// ErrBadSize indicates a non-positive stakeholder or issue count.
var ErrBadSize = errors.New("opinions: size must be > 0")

// ErrInvalidProbability indicates a probability outside [0,1].
var ErrInvalidProbability = errors.New("opinions: probability out of range")

// ErrNeedRandSource indicates a generator ran without WithSeed/WithRand.
var ErrNeedRandSource = errors.New("opinions: rng is required")

// ErrDimensionMismatch indicates a preference vector or relationship matrix
// whose size does not match the requested issue count, or a relationship
// matrix that is not square and symmetric.
var ErrDimensionMismatch = errors.New("opinions: dimension mismatch")

// ErrInvalidPreference indicates a preference that is not a finite value in
// [-1,1].
var ErrInvalidPreference = errors.New("opinions: preference out of range")
