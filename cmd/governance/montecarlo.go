package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwlandry/governance/experiment"
	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/internal/config"
	"github.com/nwlandry/governance/internal/export"
	"github.com/nwlandry/governance/internal/store"
)

func newMonteCarloCmd(a *app) *cobra.Command {
	var (
		name     string
		saveRuns bool
	)
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Repeat one configuration many times in parallel",
		Long: `Run the configured governance process --runs times over the same
population, each repetition with its own random stream derived from the seed.
Summaries are written in run order and, with --db, stored as they complete.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.monteCarlo(cmd, name, saveRuns)
		},
	}

	d := config.Default().Experiment
	f := cmd.Flags()
	f.Int("runs", d.Runs, "number of repetitions")
	f.Int("workers", d.Workers, "parallel workers (0 = one per run)")
	f.StringVar(&name, "name", "", "experiment name stored with the results")
	f.BoolVar(&saveRuns, "save-runs", false, "also store every run's decisions and groups (requires --db)")
	bindFlags(a.v, f, map[string]string{
		"runs":    "experiment.runs",
		"workers": "experiment.workers",
	})
	return cmd
}

func (a *app) monteCarlo(cmd *cobra.Command, name string, saveRuns bool) error {
	cfg := a.cfg
	if saveRuns && cfg.Output.Database == "" {
		return fmt.Errorf("--save-runs requires --db")
	}

	op, rel, err := cfg.Population.Build(cfg.Seed)
	if err != nil {
		return fmt.Errorf("build population: %w", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	body, err := cfg.MarshalExperiment()
	if err != nil {
		return err
	}

	runner := experiment.Runner{
		Runs:        cfg.Experiment.Runs,
		Workers:     cfg.Experiment.Workers,
		Seed:        cfg.Seed,
		Options:     append(opts, governance.WithLogger(a.log)),
		KeepResults: saveRuns,
		Logger:      a.log,
	}
	doc := export.Experiment{
		ConfigHash: store.HashConfig(string(body)),
		Seed:       cfg.Seed,
		Runs:       cfg.Experiment.Runs,
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		exp, err := st.CreateExperiment(cmd.Context(), store.Experiment{
			Name:   name,
			Seed:   cfg.Seed,
			Runs:   cfg.Experiment.Runs,
			Config: string(body),
		})
		if err != nil {
			return err
		}
		doc.ID = exp.ID
		runner.Store = func(ctx context.Context, s experiment.Summary) error {
			if err := st.SaveSummary(ctx, exp.ID, s); err != nil {
				return err
			}
			if s.Result != nil {
				return st.SaveRun(ctx, exp.ID, s.Run, s.Result)
			}
			return nil
		}
	}

	start := time.Now()
	doc.Summaries, err = runner.Run(cmd.Context(), op, rel)
	if err != nil {
		return err
	}
	a.log.Info("monte carlo complete",
		slog.String("experiment", doc.ID),
		slog.Int("runs", doc.Runs),
		slog.Duration("elapsed", time.Since(start)),
	)
	return a.write(cmd, doc)
}
