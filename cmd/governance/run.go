package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nwlandry/governance/experiment"
	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/internal/export"
	"github.com/nwlandry/governance/internal/store"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one governance process and write its result",
		Long: `Generate a population from the configured seed, run one governance
process over every issue and write the decisions, the decision groups and the
final opinions. With --db the run is also stored as a one-run experiment.`,
		Args: cobra.NoArgs,
		RunE: a.runOnce,
	}
}

func (a *app) runOnce(cmd *cobra.Command, _ []string) error {
	cfg := a.cfg
	op, rel, err := cfg.Population.Build(cfg.Seed)
	if err != nil {
		return fmt.Errorf("build population: %w", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, governance.WithSeed(cfg.Seed), governance.WithLogger(a.log))

	res, err := governance.Run(op, rel, opts...)
	if err != nil {
		return err
	}
	sum, err := experiment.Summarize(0, cfg.Seed, res)
	if err != nil {
		return err
	}
	doc, err := export.NewRun(cfg.Seed, res)
	if err != nil {
		return err
	}
	doc.Summary = &sum

	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		body, err := cfg.MarshalExperiment()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		exp, err := st.CreateExperiment(ctx, store.Experiment{Name: "run", Seed: cfg.Seed, Runs: 1, Config: string(body)})
		if err != nil {
			return err
		}
		if err := st.SaveSummary(ctx, exp.ID, sum); err != nil {
			return err
		}
		if err := st.SaveRun(ctx, exp.ID, 0, res); err != nil {
			return err
		}
		a.log.Info("run stored", slog.String("experiment", exp.ID))
	}

	return a.write(cmd, doc)
}
