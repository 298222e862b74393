package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwlandry/governance/internal/export"
	"github.com/nwlandry/governance/internal/store"
)

func newExperimentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Inspect experiments stored in the results database",
	}

	var configHash string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored experiments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			exps, err := st.ListExperiments(cmd.Context(), configHash)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tRUNS\tSEED\tCONFIG\tNAME")
			for _, e := range exps {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					e.ID, e.CreatedAt.Format(time.RFC3339), e.Runs, e.Seed, e.ConfigHash[:12], e.Name)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&configHash, "config-hash", "", "only experiments run with this configuration hash")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Write the run summaries of one experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			exp, err := st.GetExperiment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sums, err := st.ListSummaries(cmd.Context(), exp.ID)
			if err != nil {
				return err
			}
			return a.write(cmd, export.Experiment{
				ID:         exp.ID,
				ConfigHash: exp.ConfigHash,
				Seed:       exp.Seed,
				Runs:       exp.Runs,
				Summaries:  sums,
			})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func (a *app) requireStore() (*store.Store, error) {
	if a.cfg.Output.Database == "" {
		return nil, fmt.Errorf("no results database: set --db or GOVERNANCE_DB_PATH")
	}
	return a.openStore()
}
