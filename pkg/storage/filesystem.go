package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoStore persists uploaded student photos on local disk and maps them to
// the public URL paths stored in student_details.photo_url.
type PhotoStore struct {
	baseDir        string
	publicPath     string
	placeholderURL string
}

// NewPhotoStore ensures the upload directory exists and returns a handle.
func NewPhotoStore(baseDir, publicPath, placeholderURL string) (*PhotoStore, error) {
	if baseDir == "" {
		baseDir = "./uploads/students"
	}
	if publicPath == "" {
		publicPath = "/uploads/students"
	}
	if placeholderURL == "" {
		placeholderURL = "/default-avatar.png"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &PhotoStore{
		baseDir:        baseDir,
		publicPath:     strings.TrimRight(publicPath, "/"),
		placeholderURL: placeholderURL,
	}, nil
}

// SaveUpload stores the multipart file under a generated name and returns the
// public URL path referencing it.
func (s *PhotoStore) SaveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded photo: %w", err)
	}
	defer src.Close() //nolint:errcheck

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	target := filepath.Join(s.baseDir, name)
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close() //nolint:errcheck

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write photo file: %w", err)
	}
	return s.publicPath + "/" + name, nil
}

// Remove deletes the on-disk file behind a public URL path. The placeholder is
// never removed. A missing file reports os.ErrNotExist so callers can log it
// without treating it as a failure.
func (s *PhotoStore) Remove(publicURL string) error {
	if publicURL == "" || publicURL == s.placeholderURL {
		return nil
	}
	target := filepath.Join(s.baseDir, path.Base(publicURL))
	if err := os.Remove(target); err != nil {
		return err
	}
	return nil
}

// DefaultURL returns the placeholder avatar path.
func (s *PhotoStore) DefaultURL() string {
	return s.placeholderURL
}

// Dir exposes the base directory for static file serving.
func (s *PhotoStore) Dir() string {
	return s.baseDir
}
