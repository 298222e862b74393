// Package experiment repeats one governance configuration many times.
//
// Every repetition gets its own RNG stream, derived from the runner seed and
// the run index, and its own copy of the opinions, so results depend only on
// (Seed, run index) and never on scheduling or worker count.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/matrix"
	"github.com/nwlandry/governance/rng"
)

// ErrNoRuns is returned when Runs < 1.
var ErrNoRuns = errors.New("experiment: runs must be > 0")

// Summary condenses one run into the quantities the analysis scripts plot.
type Summary struct {
	Run          int     `json:"run" yaml:"run" cbor:"run"`
	Seed         int64   `json:"seed" yaml:"seed" cbor:"seed"`
	Adopted      int     `json:"adopted" yaml:"adopted" cbor:"adopted"`
	Rejected     int     `json:"rejected" yaml:"rejected" cbor:"rejected"`
	MeanOpinion  float64 `json:"mean_opinion" yaml:"mean_opinion" cbor:"mean_opinion"`
	Polarization float64 `json:"polarization" yaml:"polarization" cbor:"polarization"`
	Agreement    float64 `json:"agreement" yaml:"agreement" cbor:"agreement"`
	Participants int     `json:"participants" yaml:"participants" cbor:"participants"`

	// Result is the full run; nil unless Runner.KeepResults is set.
	Result *governance.Result `json:"-" yaml:"-" cbor:"-"`
}

// Runner executes Runs independent repetitions on up to Workers goroutines.
type Runner struct {
	Runs    int
	Workers int // <= 0 means one worker per run
	Seed    int64
	// Options are applied to every run before the per-run seed.
	Options []governance.Option
	// KeepResults retains each run's full Result in its Summary.
	KeepResults bool
	Logger      *slog.Logger
	// Store, when set, receives every Summary as soon as its run completes.
	// It is called from worker goroutines and must be safe for concurrent use.
	Store func(ctx context.Context, s Summary) error
}

// Run executes the repetitions and returns their summaries ordered by run.
// Cancelling ctx stops scheduling further runs; runs already started finish.
func (r Runner) Run(ctx context.Context, opinions, relationships *matrix.Dense) ([]Summary, error) {
	if r.Runs < 1 {
		return nil, fmt.Errorf("Run: runs=%d: %w", r.Runs, ErrNoRuns)
	}
	log := r.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	out := make([]Summary, r.Runs)
	g, gctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}

	for i := 0; i < r.Runs; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seed := rng.DeriveSeed(r.seed(), uint64(i))
			opts := append(append([]governance.Option{}, r.Options...), governance.WithSeed(seed))
			res, err := governance.Run(opinions, relationships, opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			s, err := Summarize(i, seed, res)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			if r.KeepResults {
				s.Result = res
			}
			if r.Store != nil {
				if err = r.Store(gctx, s); err != nil {
					return fmt.Errorf("run %d: store: %w", i, err)
				}
			}
			out[i] = s
			log.Debug("run complete", slog.Int("run", i), slog.Int("adopted", s.Adopted))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Run < out[b].Run })
	log.Info("experiment complete", slog.Int("runs", r.Runs), slog.Int64("seed", r.seed()))
	return out, nil
}

func (r Runner) seed() int64 {
	if r.Seed == 0 {
		return rng.DefaultSeed
	}
	return r.Seed
}

// Summarize computes the Summary of a finished run.
//
//   - MeanOpinion is the mean of the final opinion matrix.
//   - Polarization is the mean over issues of the population variance.
//   - Agreement is the fraction of (stakeholder, issue) cells whose opinion
//     sign (0 counts as For) matches the issue's outcome.
func Summarize(run int, seed int64, res *governance.Result) (Summary, error) {
	s := Summary{Run: run, Seed: seed, Participants: res.Groups.NodeCount()}
	for _, o := range res.History.Map() {
		if o == governance.For {
			s.Adopted++
		} else {
			s.Rejected++
		}
	}

	var err error
	if s.MeanOpinion, err = matrix.Mean(res.Opinions); err != nil {
		return Summary{}, err
	}
	vars, err := matrix.ColVariances(res.Opinions)
	if err != nil {
		return Summary{}, err
	}
	for _, v := range vars {
		s.Polarization += v
	}
	s.Polarization /= float64(len(vars))

	n, d := res.Opinions.Shape()
	outcomes, err := res.History.Vector(d)
	if err != nil {
		return Summary{}, err
	}
	var agree int
	res.Opinions.Do(func(_, j int, v float64) bool {
		if math.Copysign(1, v) == outcomes[j] || (v == 0 && outcomes[j] == 1) {
			agree++
		}
		return true
	})
	s.Agreement = float64(agree) / float64(n*d)
	return s, nil
}
