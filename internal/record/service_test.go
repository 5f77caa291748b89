package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/area"
)

// memFiles is an in-memory FileStore.
type memFiles struct {
	saved map[string]string
	n     int
	err   error
}

func (m *memFiles) Save(name string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.n++
	p := fmt.Sprintf("/uploads/%d-%s", m.n, name)
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[p] = string(data)
	return p, nil
}

func uploads(names ...string) []Upload {
	var out []Upload
	for _, n := range names {
		out = append(out, Upload{Filename: n, Body: strings.NewReader("data-" + n)})
	}
	return out
}

func TestServiceCreateWithUploads(t *testing.T) {
	repo, _ := testSetup(t)
	files := &memFiles{}
	svc := NewService(repo, files)

	rec, err := svc.Create(context.Background(), &VisitRecord{Address: "123 Panaji Road"}, uploads("a.jpg", "b.jpg"))
	require.NoError(t, err)

	assert.Equal(t, area.NorthGoa, rec.Area)
	assert.Equal(t, "/uploads/1-a.jpg,/uploads/2-b.jpg", rec.Photos)
	assert.Equal(t, "data-a.jpg", files.saved["/uploads/1-a.jpg"])
}

func TestServicePhotoRoundTrip(t *testing.T) {
	repo, _ := testSetup(t)
	svc := NewService(repo, &memFiles{})
	ctx := context.Background()

	rec, err := svc.Create(ctx, &VisitRecord{}, uploads("a.jpg", "b.jpg"))
	require.NoError(t, err)
	first := PhotoPaths(rec.Photos)
	require.Len(t, first, 2)

	rec, err = svc.AddPhotos(ctx, rec.ID, uploads("c.jpg"))
	require.NoError(t, err)
	paths := strings.Split(rec.Photos, ",")
	require.Len(t, paths, 3)
	assert.Equal(t, first[0], paths[0])
	assert.Equal(t, first[1], paths[1])

	rec, err = svc.RemovePhoto(ctx, rec.ID, paths[1])
	require.NoError(t, err)
	assert.Equal(t, paths[0]+","+paths[2], rec.Photos)

	stored, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Photos, stored.Photos)
}

func TestServiceAddPhotosErrors(t *testing.T) {
	repo, _ := testSetup(t)
	svc := NewService(repo, &memFiles{})
	ctx := context.Background()

	_, err := svc.AddPhotos(ctx, "missing", uploads("a.jpg"))
	assert.True(t, apperr.IsNotFound(err), "missing record: %v", err)

	rec, err := svc.Create(ctx, &VisitRecord{}, nil)
	require.NoError(t, err)

	_, err = svc.AddPhotos(ctx, rec.ID, nil)
	assert.True(t, apperr.IsValidation(err), "no files: %v", err)

	_, err = svc.AddPhotos(ctx, rec.ID, uploads("1", "2", "3", "4", "5", "6"))
	assert.True(t, apperr.IsValidation(err), "too many files: %v", err)

	failing := NewService(repo, &memFiles{err: errors.New("disk full")})
	_, err = failing.AddPhotos(ctx, rec.ID, uploads("a.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestServiceRemovePhotoErrors(t *testing.T) {
	repo, _ := testSetup(t)
	svc := NewService(repo, &memFiles{})
	ctx := context.Background()

	_, err := svc.RemovePhoto(ctx, "missing", "/uploads/a.jpg")
	assert.True(t, apperr.IsNotFound(err))

	rec, err := svc.Create(ctx, &VisitRecord{}, nil)
	require.NoError(t, err)
	_, err = svc.RemovePhoto(ctx, rec.ID, "/uploads/a.jpg")
	assert.True(t, apperr.IsValidation(err))

	rec, err = svc.AddPhotos(ctx, rec.ID, uploads("a.jpg"))
	require.NoError(t, err)
	unchanged, err := svc.RemovePhoto(ctx, rec.ID, "/uploads/other.jpg")
	require.NoError(t, err)
	assert.Equal(t, rec.Photos, unchanged.Photos)
}

func TestRepositoryStoreFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT .* FROM visit_records").WillReturnError(errors.New("database is locked"))

	repo := NewRepository(mockDB)
	_, err = repo.List(context.Background(), Filter{Area: "North Goa"})
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
	assert.False(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
