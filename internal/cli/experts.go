package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bfcwefc/msme-desk/internal/dates"
)

func newExpertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experts",
		Aliases: []string{"expert"},
		Short:   "Browse experts and manage their monthly plans",
	}

	cmd.AddCommand(
		newExpertsListCmd(),
		newExpertsShowCmd(),
		newExpertsRemoveCmd(),
		newExpertsAddMonthCmd(),
		newExpertsSetCurrentCmd(),
		newExpertsActiveWeekCmd(),
	)

	return cmd
}

func newExpertsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List experts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			experts, err := newAPIClient().ListExperts()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), experts)
			}
			return printExpertTable(cmd.OutOrStdout(), experts)
		},
	}
}

func newExpertsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an expert and their plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newAPIClient().GetExpert(args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), e)
			}
			printExpertSummary(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func newExpertsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an expert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := newAPIClient().DeleteExpert(id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"id":      id,
					"removed": true,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expert %s removed.\n", id)
			return nil
		},
	}
}

func newExpertsAddMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-month <id> <month> <year>",
		Short: "Add an empty monthly plan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[2])
			if err != nil || year <= 0 {
				return fmt.Errorf("invalid year: %s", args[2])
			}

			e, err := newAPIClient().AddMonth(args[0], args[1], year)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %d to %s (plan #%d).\n", args[1], year, e.Name, len(e.Plans)-1)
			return nil
		},
	}
}

func newExpertsSetCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-current <id> <plan>",
		Short: "Mark a monthly plan as current",
		Long:  "Mark the plan at the given position (as printed by 'experts show') as the expert's current month.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := strconv.Atoi(args[1])
			if err != nil || plan < 0 {
				return fmt.Errorf("invalid plan position: %s", args[1])
			}

			e, err := newAPIClient().SetCurrentMonth(args[0], plan)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), e)
			}
			p := e.Plans[plan]
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d is now the current plan for %s.\n", p.Month, p.Year, e.Name)
			return nil
		},
	}
}

func newExpertsActiveWeekCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "active-week <id>",
		Short: "Show the week of the current plan containing a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if day != "" {
				if _, err := dates.Parse(day); err != nil {
					return err
				}
			}

			aw, err := newAPIClient().ActiveWeek(args[0], day)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), aw)
			}
			printActiveWeek(cmd.OutOrStdout(), aw)
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "day to look up (YYYY-MM-DD, default today)")

	return cmd
}
