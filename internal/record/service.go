package record

import (
	"context"
	"fmt"
	"io"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/area"
	"github.com/bfcwefc/msme-desk/internal/dates"
)

// MaxUploads is the most files accepted in one photo upload.
const MaxUploads = 5

// FileStore persists uploaded files and returns the path they are served at.
type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
}

// Upload is one uploaded file payload.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Service provides visit record business logic on top of the repository.
type Service struct {
	repo  *Repository
	files FileStore
}

// NewService creates a record service. files may be nil when uploads are not used.
func NewService(repo *Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Prepare applies creation defaults in place: today's date when none is
// given, status Pending, and an area derived from the address when none is
// given.
func Prepare(rec *VisitRecord) error {
	if rec.DateOfVisit == "" {
		rec.DateOfVisit = dates.Today().Format(dates.Layout)
	} else {
		d, err := dates.Normalize(rec.DateOfVisit)
		if err != nil {
			return apperr.Validation("dateOfVisit: %v", err)
		}
		rec.DateOfVisit = d
	}

	if rec.Status == "" {
		rec.Status = StatusPending
	}

	if rec.Area == "" {
		rec.Area = area.Classify(rec.Address)
	} else if !rec.Area.IsValid() {
		return apperr.Validation("area must be one of North Goa, South Goa, Unknown")
	}

	return nil
}

// Create stores a new record. Uploaded files are written to the file store
// before the record and their paths are appended to the photos field.
func (s *Service) Create(ctx context.Context, rec *VisitRecord, uploads []Upload) (*VisitRecord, error) {
	if err := Prepare(rec); err != nil {
		return nil, err
	}

	if len(uploads) > 0 {
		paths, err := s.store(uploads)
		if err != nil {
			return nil, err
		}
		rec.Photos = AppendPhotos(rec.Photos, paths...)
	}

	return s.repo.Insert(ctx, rec)
}

// AddPhotos stores uploaded files and appends their paths to a record.
func (s *Service) AddPhotos(ctx context.Context, id string, uploads []Upload) (*VisitRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperr.Validation("No files uploaded")
	}

	paths, err := s.store(uploads)
	if err != nil {
		return nil, err
	}

	rec.Photos = AppendPhotos(rec.Photos, paths...)
	if err := s.repo.SetPhotos(ctx, id, rec.Photos); err != nil {
		return nil, err
	}
	return rec, nil
}

// RemovePhoto removes the first entry matching path from a record's photos.
// A path that is not present leaves the record unchanged.
func (s *Service) RemovePhoto(ctx context.Context, id, path string) (*VisitRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Photos == "" {
		return nil, apperr.Validation("No photos to delete")
	}

	photos, removed := RemovePhoto(rec.Photos, path)
	if !removed {
		return rec, nil
	}

	rec.Photos = photos
	if err := s.repo.SetPhotos(ctx, id, rec.Photos); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) store(uploads []Upload) ([]string, error) {
	if len(uploads) > MaxUploads {
		return nil, apperr.Validation("too many files (max %d)", MaxUploads)
	}
	if s.files == nil {
		return nil, fmt.Errorf("file uploads are not configured")
	}

	paths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		p, err := s.files.Save(u.Filename, u.Body)
		if err != nil {
			return nil, fmt.Errorf("storing %s: %w", u.Filename, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
