package expert

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bfcwefc/msme-desk/internal/apperr"
)

const entity = "Expert"

// Repository provides CRUD operations for experts. Nested collections are
// stored as JSON columns and always read and written whole.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an expert repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, designation, expertise, contact, profile_image, stats, plans, moms,
	created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Create validates and stores a new expert under a generated ID.
func (r *Repository) Create(ctx context.Context, e *Expert) (*Expert, error) {
	id, err := insert(ctx, r.db, e)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// InsertMany stores experts in a single transaction and returns how many were written.
func (r *Repository) InsertMany(ctx context.Context, experts []*Expert) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	for i, e := range experts {
		if _, err := insert(ctx, tx, e); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("expert %d: %w (also failed to roll back: %v)", i, err, rbErr)
			}
			return 0, fmt.Errorf("expert %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing experts: %w", err)
	}
	return len(experts), nil
}

func insert(ctx context.Context, db execer, e *Expert) (string, error) {
	if err := e.prepare(); err != nil {
		return "", err
	}
	cols, err := encodeColumns(e)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = db.ExecContext(ctx,
		`INSERT INTO experts (id, name, designation, expertise, contact, profile_image, stats, plans, moms, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Name, e.Designation, cols.expertise, e.Contact, e.ProfileImage,
		cols.stats, cols.plans, cols.moms, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting expert: %w", err)
	}
	return id, nil
}

// GetByID returns an expert by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Expert, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM experts WHERE id = ?", id)

	e, err := scanExpert(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(entity, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying expert %s: %w", id, err)
	}
	return e, nil
}

// List returns all experts in creation order.
func (r *Repository) List(ctx context.Context) (experts []*Expert, err error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM experts ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing experts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	experts = make([]*Expert, 0)
	for rows.Next() {
		e, err := scanExpert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expert: %w", err)
		}
		experts = append(experts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating experts: %w", err)
	}
	return experts, nil
}

// Update applies a partial update and returns the updated expert.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (*Expert, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(e)
	if err := r.Save(ctx, e); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Save writes every field of e back to its row.
func (r *Repository) Save(ctx context.Context, e *Expert) error {
	if err := e.prepare(); err != nil {
		return err
	}
	cols, err := encodeColumns(e)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = r.execOne(ctx, e.ID,
		`UPDATE experts SET name = ?, designation = ?, expertise = ?, contact = ?, profile_image = ?,
		 stats = ?, plans = ?, moms = ?, updated_at = ? WHERE id = ?`,
		e.Name, e.Designation, cols.expertise, e.Contact, e.ProfileImage,
		cols.stats, cols.plans, cols.moms, now, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating expert: %w", err)
	}
	e.UpdatedAt = now
	return nil
}

// Delete removes an expert by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, id, "DELETE FROM experts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting expert: %w", err)
	}
	return nil
}

// DeleteAll removes every expert and returns how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM experts")
	if err != nil {
		return 0, fmt.Errorf("clearing experts: %w", err)
	}
	return result.RowsAffected()
}

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

type jsonColumns struct {
	expertise, stats, plans, moms string
}

func encodeColumns(e *Expert) (jsonColumns, error) {
	var cols jsonColumns
	for _, c := range []struct {
		dst *string
		v   interface{}
	}{
		{&cols.expertise, e.Expertise},
		{&cols.stats, e.Stats},
		{&cols.plans, e.Plans},
		{&cols.moms, e.Moms},
	} {
		b, err := json.Marshal(c.v)
		if err != nil {
			return cols, fmt.Errorf("encoding expert: %w", err)
		}
		*c.dst = string(b)
	}
	return cols, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExpert(s scanner) (*Expert, error) {
	var e Expert
	var cols jsonColumns
	err := s.Scan(
		&e.ID, &e.Name, &e.Designation, &cols.expertise, &e.Contact, &e.ProfileImage,
		&cols.stats, &cols.plans, &cols.moms, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, c := range []struct {
		src string
		dst interface{}
	}{
		{cols.expertise, &e.Expertise},
		{cols.stats, &e.Stats},
		{cols.plans, &e.Plans},
		{cols.moms, &e.Moms},
	} {
		if err := json.Unmarshal([]byte(c.src), c.dst); err != nil {
			return nil, fmt.Errorf("decoding expert %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
