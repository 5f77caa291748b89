package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bfcwefc/msme-desk/internal/record"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record"},
		Short:   "Browse and update visit records",
	}

	cmd.AddCommand(
		newRecordsListCmd(),
		newRecordsShowCmd(),
		newRecordsResolveCmd(),
		newRecordsRemoveCmd(),
	)

	return cmd
}

func newRecordsListCmd() *cobra.Command {
	var f record.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visit records",
		Long:  "List visit records, newest first. All filters combine; empty filters are ignored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := newAPIClient().ListRecords(f)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			return printRecordTable(cmd.OutOrStdout(), recs)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.Area, "area", "", "area (North Goa|South Goa|Unknown)")
	flags.StringVar(&f.Sector, "sector", "", "sector substring")
	flags.StringVar(&f.RawSector, "raw-sector", "", "exact sector, case-insensitive")
	flags.StringVar(&f.EnterpriseType, "type", "", "enterprise type (Micro|Small|Medium)")
	flags.StringVar(&f.Status, "status", "", "status (Pending|Resolved)")
	flags.StringVar(&f.Search, "search", "", "business or visitor name substring")
	flags.StringVar(&f.StartDate, "from", "", "first visit date, inclusive (YYYY-MM-DD)")
	flags.StringVar(&f.EndDate, "to", "", "last visit date, inclusive (YYYY-MM-DD)")

	return cmd
}

func newRecordsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show record details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newAPIClient().GetRecord(args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			printRecordSummary(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func newRecordsResolveCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark a record resolved",
		Long:  "Set a record's status. Defaults to Resolved; use --status Pending to reopen.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newAPIClient().UpdateRecord(args[0], record.Patch{Status: &status})
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %s is now %s.\n", rec.ID, rec.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", record.StatusResolved, "new status")

	return cmd
}

func newRecordsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := newAPIClient().DeleteRecord(id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"id":      id,
					"removed": true,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %s removed.\n", id)
			return nil
		},
	}
}
