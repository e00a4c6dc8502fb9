package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index state, embedding budget and component health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			budget, hasBudget := a.provider.Budget()
			renderStats(cmd.OutOrStdout(), a.pipeline.IndexStats(ctx), budget, hasBudget, a.health.Check(ctx))
			return nil
		},
	}
}
