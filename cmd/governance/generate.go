package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nwlandry/governance/internal/export"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a generated population matrix",
		Long: `Generate the population described by the configuration and write one
of its matrices. The same seed always yields the same matrices, so generated
files can be inspected before running a process over them.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "opinions",
			Short: "Write the stakeholder-by-issue opinion matrix",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.generate(cmd, "opinions")
			},
		},
		&cobra.Command{
			Use:   "relationships",
			Short: "Write the issue-by-issue relationship matrix",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.generate(cmd, "relationships")
			},
		},
	)
	return cmd
}

func (a *app) generate(cmd *cobra.Command, kind string) error {
	op, rel, err := a.cfg.Population.Build(a.cfg.Seed)
	if err != nil {
		return fmt.Errorf("build population: %w", err)
	}
	m := op
	if kind == "relationships" {
		m = rel
	}
	return a.write(cmd, export.NewMatrix(kind, a.cfg.Seed, m))
}
