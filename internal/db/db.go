// Package db opens the SQLite store that holds visit records and experts.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// connParams are applied by the driver to every pooled connection.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_foreign_keys": {"on"},
	"_busy_timeout": {"5000"},
}

// DefaultPath is ~/.msme-desk/desk.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".msme-desk", "desk.db"), nil
}

// Open creates the parent directory if needed, connects with WAL journaling,
// foreign keys and a 5s lock wait, and applies pending migrations.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("preparing database directory: %w", err)
	}

	conn, err := sql.Open(driverName, path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, closeAfter(conn, fmt.Errorf("connecting to %s: %w", path, err))
	}
	if err := migrate(conn); err != nil {
		return nil, closeAfter(conn, fmt.Errorf("migrating %s: %w", path, err))
	}

	return conn, nil
}

func closeAfter(conn *sql.DB, err error) error {
	if cerr := conn.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("closing database: %w", cerr))
	}
	return err
}
