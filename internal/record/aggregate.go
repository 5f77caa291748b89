package record

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bfcwefc/msme-desk/internal/area"
)

// Totals are the status and registration counts over a set of records.
// Resolved and Pending are independent substring checks on the free-text
// status, so they need not sum to Total.
type Totals struct {
	Total         int
	Resolved      int
	Pending       int
	Registrations int
}

// GroupCount is a count for one distinct column value. Null marks rows where
// the column was NULL.
type GroupCount struct {
	Value string
	Null  bool
	Count int
}

const totalsSQL = `SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN status LIKE '%resolved%' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status LIKE '%pending%' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN trim(udyam_registration_no, ' ' || char(9) || char(10) || char(13)) <> '' THEN 1 ELSE 0 END), 0)
	FROM visit_records`

// CountTotals counts all records, or only those for expertName when it is
// non-empty (case-insensitive exact match on the stored string).
func (r *Repository) CountTotals(ctx context.Context, expertName string) (Totals, error) {
	query := totalsSQL
	var args []interface{}
	if expertName != "" {
		query += " WHERE expert_name = ? COLLATE NOCASE"
		args = append(args, expertName)
	}

	var t Totals
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.Total, &t.Resolved, &t.Pending, &t.Registrations); err != nil {
		return Totals{}, fmt.Errorf("counting records: %w", err)
	}
	return t, nil
}

// CountByArea returns the number of records per area. Every known area is
// present in the result, zero when unused.
func (r *Repository) CountByArea(ctx context.Context) (map[area.Area]int, error) {
	groups, err := r.groupCount(ctx, "area")
	if err != nil {
		return nil, err
	}

	counts := make(map[area.Area]int, len(area.All))
	for _, a := range area.All {
		counts[a] = 0
	}
	for _, g := range groups {
		counts[area.Area(g.Value)] += g.Count
	}
	return counts, nil
}

// CountBySector groups records by their literal sector value.
func (r *Repository) CountBySector(ctx context.Context) ([]GroupCount, error) {
	return r.groupCount(ctx, "sector")
}

// groupCount runs a GROUP BY over a fixed column name.
func (r *Repository) groupCount(ctx context.Context, column string) (groups []GroupCount, err error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM visit_records GROUP BY %[1]s", column))
	if err != nil {
		return nil, fmt.Errorf("grouping by %s: %w", column, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var v sql.NullString
		var g GroupCount
		if err := rows.Scan(&v, &g.Count); err != nil {
			return nil, fmt.Errorf("scanning %s group: %w", column, err)
		}
		g.Value, g.Null = v.String, !v.Valid
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s groups: %w", column, err)
	}
	return groups, nil
}
