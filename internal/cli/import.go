package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bfcwefc/msme-desk/internal/expert"
	"github.com/bfcwefc/msme-desk/internal/importer"
	"github.com/bfcwefc/msme-desk/internal/record"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import spreadsheets into the local database",
		Long:  "Load Excel workbooks straight into the database given by --db. A running server shows the new records once its statistics cache expires.",
	}

	cmd.AddCommand(newImportVisitsCmd(), newImportExpertsCmd())

	return cmd
}

func newImportVisitsCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "visits <file.xlsx>",
		Short: "Import the visitor log",
		Long:  "Import the visitor log workbook. The first sheet is read; its column headers are on row 2.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], "records", func(ctx context.Context, im *importer.Importer, r io.Reader) (int, error) {
				return im.ImportVisits(ctx, r, replace)
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing records first")

	return cmd
}

func newImportExpertsCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "experts <file.xlsx>",
		Short: "Import the expert roster",
		Long:  "Import the expert roster workbook with Name, Designation and Company Email ID columns.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], "experts", func(ctx context.Context, im *importer.Importer, r io.Reader) (int, error) {
				return im.ImportExperts(ctx, r, replace)
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing experts first")

	return cmd
}

func runImport(cmd *cobra.Command, path, noun string, run func(context.Context, *importer.Importer, io.Reader) (int, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	im := importer.New(record.NewRepository(database), expert.NewRepository(database))
	n, err := run(cmd.Context(), im, f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"file":     path,
			"imported": n,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s from %s.\n", n, noun, path)
	return nil
}
