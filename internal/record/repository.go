package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/area"
)

// entity is the name used in not-found messages.
const entity = "MSME"

// Repository provides CRUD and aggregate queries for visit records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visit record repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO visit_records
	(id, serial_no, date_of_visit, assisted_by, visitor_name, visitor_category, visitor_category_other,
	 gender, caste, contact_number, email, address, business_name, udyam_registration_no, enterprise_type,
	 sector, purpose_of_visit, expert_name, status, support_details, photos, follow_up_action,
	 query_resolution_required, area, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, serial_no, date_of_visit, assisted_by, visitor_name, visitor_category,
	visitor_category_other, gender, caste, contact_number, email, address, business_name,
	udyam_registration_no, enterprise_type, COALESCE(sector, ''), purpose_of_visit, expert_name, status,
	support_details, photos, follow_up_action, query_resolution_required, area, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Insert stores a prepared record under a new ID and returns the stored copy.
// Callers are expected to have applied defaults (see Service.Create).
func (r *Repository) Insert(ctx context.Context, rec *VisitRecord) (*VisitRecord, error) {
	id, err := insert(ctx, r.db, rec)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// InsertMany stores records in a single transaction and returns how many were written.
func (r *Repository) InsertMany(ctx context.Context, recs []*VisitRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	for i, rec := range recs {
		if _, err := insert(ctx, tx, rec); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("record %d: %w (also failed to roll back: %v)", i, err, rbErr)
			}
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing records: %w", err)
	}
	return len(recs), nil
}

func insert(ctx context.Context, db execer, rec *VisitRecord) (string, error) {
	id := uuid.NewString()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, insertSQL,
		id, rec.SerialNo, rec.DateOfVisit, rec.AssistedBy, rec.VisitorName, rec.VisitorCategory,
		rec.VisitorCategoryOther, rec.Gender, rec.Caste, rec.ContactNumber, rec.Email, rec.Address,
		rec.BusinessName, rec.UdyamRegistrationNo, rec.EnterpriseType, rec.Sector, rec.PurposeOfVisit,
		string(rec.ExpertName), rec.Status, rec.SupportDetails, rec.Photos, rec.FollowUpAction,
		rec.QueryResolutionRequired, string(rec.Area), createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}
	return id, nil
}

// GetByID returns a record by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*VisitRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM visit_records WHERE id = ?", selectColumns)
	row := r.db.QueryRowContext(ctx, query, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(entity, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", id, err)
	}

	return rec, nil
}

// List returns records matching the filter, newest visit first.
// No match yields an empty, non-nil slice.
func (r *Repository) List(ctx context.Context, f Filter) ([]*VisitRecord, error) {
	conditions, args, err := f.where()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM visit_records", selectColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date_of_visit DESC, created_at DESC"

	return r.query(ctx, query, args...)
}

// Recent returns the most recent records for an expert name
// (case-insensitive exact match on the stored expertName string).
func (r *Repository) Recent(ctx context.Context, expertName string, limit int) ([]*VisitRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM visit_records WHERE expert_name = ? COLLATE NOCASE ORDER BY date_of_visit DESC, created_at DESC LIMIT ?",
		selectColumns,
	)
	return r.query(ctx, query, expertName, limit)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) (recs []*VisitRecord, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	recs = make([]*VisitRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return recs, nil
}

// Update applies a partial update and returns the updated record.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (*VisitRecord, error) {
	sets, args, err := p.assignments()
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE visit_records SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if err := r.execOne(ctx, id, query, args...); err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	return r.GetByID(ctx, id)
}

// SetPhotos overwrites the photos field of a record.
func (r *Repository) SetPhotos(ctx context.Context, id, photos string) error {
	if err := r.execOne(ctx, id, "UPDATE visit_records SET photos = ? WHERE id = ?", photos, id); err != nil {
		return fmt.Errorf("updating photos: %w", err)
	}
	return nil
}

// Delete removes a record by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, id, "DELETE FROM visit_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// DeleteAll removes every record and returns how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM visit_records")
	if err != nil {
		return 0, fmt.Errorf("clearing records: %w", err)
	}
	return result.RowsAffected()
}

// execOne runs a statement that must affect exactly the row with the given ID.
func (r *Repository) execOne(ctx context.Context, id, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound(entity, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*VisitRecord, error) {
	var rec VisitRecord
	var expertName, recArea string
	err := s.Scan(
		&rec.ID, &rec.SerialNo, &rec.DateOfVisit, &rec.AssistedBy, &rec.VisitorName, &rec.VisitorCategory,
		&rec.VisitorCategoryOther, &rec.Gender, &rec.Caste, &rec.ContactNumber, &rec.Email, &rec.Address,
		&rec.BusinessName, &rec.UdyamRegistrationNo, &rec.EnterpriseType, &rec.Sector, &rec.PurposeOfVisit,
		&expertName, &rec.Status, &rec.SupportDetails, &rec.Photos, &rec.FollowUpAction,
		&rec.QueryResolutionRequired, &recArea, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ExpertName = NameList(expertName)
	rec.Area = area.Area(recArea)
	return &rec, nil
}
