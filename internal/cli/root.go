// Package cli defines the cobra command tree for msme-desk.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bfcwefc/msme-desk/internal/client"
	"github.com/bfcwefc/msme-desk/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "desk",
		Short:         "MSME facilitation desk records and expert plans",
		Long:          "Track MSME visits to the facilitation centre, review statistics, and manage expert monthly plans. Run the API server with 'desk serve'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.msme-desk/desk.db)")

	root.AddCommand(
		newServeCmd(),
		newRecordsCmd(),
		newStatsCmd(),
		newExpertStatsCmd(),
		newExpertsCmd(),
		newImportCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// resolveFormat applies the saved default format unless --format was given.
func resolveFormat(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("format") {
		if s, err := readSettings(); err == nil && s.Format != "" {
			flagFormat = s.Format
		}
	}
	if !validFormat(flagFormat) {
		return fmt.Errorf("invalid format: %s (must be text or json)", flagFormat)
	}
	return nil
}

// dbPath resolves the --db flag, then DESK_DB, then the default path.
func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if v := os.Getenv("DESK_DB"); v != "" {
		return v, nil
	}
	return db.DefaultPath()
}

// openDB opens the SQLite database. Used by serve and import, which work on
// the local store directly.
func openDB() (*sql.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the desk API.
func newAPIClient() *client.Client {
	return client.New(serverURL())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
