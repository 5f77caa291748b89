package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Long:  "Show total, resolved and pending counts with breakdowns by area and sector.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newAPIClient().Stats()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), g)
			}
			printGlobalStats(cmd.OutOrStdout(), g)
			return nil
		},
	}
}

func newExpertStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expert-stats <name>",
		Short: "Show one expert's visit statistics",
		Long:  "Show visit counts and recent activity for records naming the expert. The name must match exactly, ignoring case.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newAPIClient().ExpertStats(args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), s)
			}
			printExpertStats(cmd.OutOrStdout(), args[0], s)
			return nil
		},
	}
}
