package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// migrations create the schema; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS visit_records (
		id                        TEXT PRIMARY KEY,
		serial_no                 TEXT NOT NULL DEFAULT '',
		date_of_visit             TEXT NOT NULL,
		assisted_by               TEXT NOT NULL DEFAULT '',
		visitor_name              TEXT NOT NULL DEFAULT '',
		visitor_category          TEXT NOT NULL DEFAULT '',
		visitor_category_other    TEXT NOT NULL DEFAULT '',
		gender                    TEXT NOT NULL DEFAULT '',
		caste                     TEXT NOT NULL DEFAULT '',
		contact_number            TEXT NOT NULL DEFAULT '',
		email                     TEXT NOT NULL DEFAULT '',
		address                   TEXT NOT NULL DEFAULT '',
		business_name             TEXT NOT NULL DEFAULT '',
		udyam_registration_no     TEXT NOT NULL DEFAULT '',
		enterprise_type           TEXT NOT NULL DEFAULT '',
		sector                    TEXT,
		purpose_of_visit          TEXT NOT NULL DEFAULT '',
		expert_name               TEXT NOT NULL DEFAULT '',
		status                    TEXT NOT NULL DEFAULT 'Pending',
		support_details           TEXT NOT NULL DEFAULT '',
		photos                    TEXT NOT NULL DEFAULT '',
		follow_up_action          TEXT NOT NULL DEFAULT '',
		query_resolution_required TEXT NOT NULL DEFAULT '',
		area                      TEXT NOT NULL DEFAULT 'Unknown'
			CHECK (area IN ('North Goa', 'South Goa', 'Unknown')),
		created_at                DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_records_date ON visit_records (date_of_visit)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_records_area ON visit_records (area)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_records_expert ON visit_records (expert_name COLLATE NOCASE)`,
	`CREATE TABLE IF NOT EXISTS experts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		designation   TEXT NOT NULL DEFAULT '',
		expertise     TEXT NOT NULL DEFAULT '[]',
		contact       TEXT NOT NULL DEFAULT '',
		profile_image TEXT NOT NULL DEFAULT '',
		stats         TEXT NOT NULL DEFAULT '{}',
		plans         TEXT NOT NULL DEFAULT '[]',
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
}

// columnAdditions extend tables created by earlier releases.
var columnAdditions = []struct {
	table, column, definition string
}{
	{"experts", "moms", "TEXT NOT NULL DEFAULT '[]'"},
}

// migrate applies the schema statements, then any missing columns. Every
// step is safe to repeat.
func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}

	for _, c := range columnAdditions {
		if err := ensureColumn(db, c.table, c.column, c.definition); err != nil {
			return fmt.Errorf("column %s.%s: %w", c.table, c.column, err)
		}
	}

	return nil
}

// ensureColumn adds table.column unless the table already has it.
func ensureColumn(db *sql.DB, table, column, definition string) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}

	zap.L().Info("adding column", zap.String("table", table), zap.String("column", column))
	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
