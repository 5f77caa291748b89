// Package upload stores uploaded photo files on local disk.
package upload

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/record"
)

// DiskStore writes files into a directory that is served under
// record.UploadPrefix.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if needed and returns a store rooted at it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes r under a generated name that keeps the original extension
// and returns the served path, e.g. "/uploads/<uuid>.jpg".
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			zap.L().Warn("closing partial upload", zap.String("file", name), zap.Error(closeErr))
		}
		if rmErr := os.Remove(dst); rmErr != nil {
			zap.L().Warn("removing partial upload", zap.String("file", name), zap.Error(rmErr))
		}
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}

	zap.L().Debug("stored upload", zap.String("original", originalName), zap.String("file", name))
	return path.Join(record.UploadPrefix, name), nil
}
