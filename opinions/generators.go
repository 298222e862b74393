// SPDX-License-Identifier: MIT
// Package: governance/opinions
//
// generators.go: N×D opinion matrices for the governance engine.
//
// Contract:
//   • n ≥ 1 and d ≥ 1 (else ErrBadSize).
//   • Probabilities in [0,1] (else ErrInvalidProbability).
//   • Preference vectors have length d (else ErrDimensionMismatch) and
//     finite entries in [-1,1] (else ErrInvalidPreference).
//   • An RNG is required (else ErrNeedRandSource).
//   • Every entry lies strictly inside (-1,1).
//
// Determinism:
//   • Draws happen row by row, column ascending, so a fixed seed always
//     produces the same matrix.

package opinions

import (
	"fmt"
	"math"

	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/rng"
)

// Method tags used in error context.
const (
	methodRandom      = "Random"
	methodPolarized   = "Polarized"
	methodMixed       = "Mixed"
	methodIncoherent  = "Incoherent"
	methodPreferences = "Preferences"
)

// preflight validates the common parameters and allocates the result.
func preflight(method string, n, d int, cfg genConfig) (*matrix.Dense, error) {
	if n < 1 || d < 1 {
		return nil, fmt.Errorf("%s: n=%d d=%d: %w", method, n, d, ErrBadSize)
	}
	if cfg.rng == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrNeedRandSource)
	}
	m, err := matrix.NewDense(n, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return m, nil
}

func checkProbability(method, name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s: %s=%.6f not in [0,1]: %w", method, name, p, ErrInvalidProbability)
	}
	return nil
}

func checkPrefs(method string, prefs []float64, d int) error {
	if len(prefs) != d {
		return fmt.Errorf("%s: len(prefs)=%d, d=%d: %w", method, len(prefs), d, ErrDimensionMismatch)
	}
	for j, p := range prefs {
		if math.IsNaN(p) || p < -1 || p > 1 {
			return fmt.Errorf("%s: prefs[%d]=%v not in [-1,1]: %w", method, j, p, ErrInvalidPreference)
		}
	}
	return nil
}

// fillRow sets row i to TruncatedNormal(mean(j), sigma) on (-1,1).
func fillRow(m *matrix.Dense, i int, sigma float64, cfg genConfig, mean func(j int) float64) {
	for j := 0; j < m.Cols(); j++ {
		_ = m.Set(i, j, rng.TruncatedNormal(mean(j), sigma, opinionMin, opinionMax, cfg.rng))
	}
}

// Random returns n×d opinions drawn uniformly from [-1,1).
func Random(n, d int, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	m, err := preflight(methodRandom, n, d, cfg)
	if err != nil {
		return nil, err
	}
	err = m.Apply(func(_, _ int, _ float64) float64 {
		return rng.Uniform(opinionMin, opinionMax, cfg.rng)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodRandom, err)
	}
	return m, nil
}

// Preferences draws a length-d vector of ±1 with equal probability, the
// "party line" consumed by Polarized, Mixed and Incoherent.
func Preferences(d int, opts ...Option) ([]float64, error) {
	cfg := newGenConfig(opts...)
	if d < 1 {
		return nil, fmt.Errorf("%s: d=%d: %w", methodPreferences, d, ErrBadSize)
	}
	if cfg.rng == nil {
		return nil, fmt.Errorf("%s: %w", methodPreferences, ErrNeedRandSource)
	}
	out := make([]float64, d)
	for j := range out {
		out[j] = 1
		if cfg.rng.Intn(2) == 0 {
			out[j] = -1
		}
	}
	return out, nil
}

// Polarized splits the population into three camps. With probability inform
// a stakeholder is uninformed and centred on 0; otherwise, with probability
// pol, they lean toward 0.5·prefs[j], else toward −0.5·prefs[j].
func Polarized(n, d int, prefs []float64, inform, pol float64, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	if err := checkCamps(methodPolarized, prefs, d, inform, pol); err != nil {
		return nil, err
	}
	m, err := preflight(methodPolarized, n, d, cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		switch {
		case cfg.rng.Float64() < inform:
			fillRow(m, i, cfg.sigma, cfg, func(int) float64 { return 0 })
		case cfg.rng.Float64() < pol:
			fillRow(m, i, cfg.sigma, cfg, func(j int) float64 { return 0.5 * prefs[j] })
		default:
			fillRow(m, i, cfg.sigma, cfg, func(j int) float64 { return -0.5 * prefs[j] })
		}
	}
	return m, nil
}

// Mixed is Polarized with camps centred on prefs[j]/max and (1−prefs[j])/max,
// where max is the largest of 1, prefs[j] and 1−prefs[j] over all issues.
func Mixed(n, d int, prefs []float64, inform, pol float64, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	if err := checkCamps(methodMixed, prefs, d, inform, pol); err != nil {
		return nil, err
	}
	m, err := preflight(methodMixed, n, d, cfg)
	if err != nil {
		return nil, err
	}

	scale := 1.0
	for _, p := range prefs {
		if p > scale {
			scale = p
		} else if 1-p > scale {
			scale = 1 - p
		}
	}

	for i := 0; i < n; i++ {
		switch {
		case cfg.rng.Float64() < inform:
			fillRow(m, i, cfg.sigma, cfg, func(int) float64 { return 0 })
		case cfg.rng.Float64() < pol:
			fillRow(m, i, cfg.sigma, cfg, func(j int) float64 { return prefs[j] / scale })
		default:
			fillRow(m, i, cfg.sigma, cfg, func(j int) float64 { return (1 - prefs[j]) / scale })
		}
	}
	return m, nil
}

func checkCamps(method string, prefs []float64, d int, inform, pol float64) error {
	if err := checkPrefs(method, prefs, d); err != nil {
		return err
	}
	if err := checkProbability(method, "inform", inform); err != nil {
		return err
	}
	return checkProbability(method, "pol", pol)
}

// Incoherent centres every stakeholder on prefs[j] for every issue, ignoring
// any relationship between issues.
func Incoherent(n, d int, prefs []float64, opts ...Option) (*matrix.Dense, error) {
	cfg := newGenConfig(opts...)
	if err := checkPrefs(methodIncoherent, prefs, d); err != nil {
		return nil, err
	}
	m, err := preflight(methodIncoherent, n, d, cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		fillRow(m, i, cfg.sigma, cfg, func(j int) float64 { return prefs[j] })
	}
	return m, nil
}
