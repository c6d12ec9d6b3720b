// Package upload stores supporting documents on local disk and hands back
// the public URL under which they are served.
package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mesias/mswdo-backend/pkg/config"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Allowed are the content types accepted, detected from the bytes rather
// than the client's Content-Type.
var Allowed = []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}

// File describes a stored upload.
type File struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
}

// DiskStorage writes uploads under a single directory with random names.
type DiskStorage struct {
	dir        string
	publicPath string
	maxBytes   int64
}

// NewDiskStorage creates the upload directory if needed.
func NewDiskStorage(cfg config.UploadConfig) (*DiskStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: cfg.Dir, publicPath: cfg.PublicPath, maxBytes: cfg.MaxBytes}, nil
}

// MaxBytes is the largest accepted file.
func (s *DiskStorage) MaxBytes() int64 { return s.maxBytes }

// Dir is where files are written.
func (s *DiskStorage) Dir() string { return s.dir }

// Save reads src fully, checks size and type, and writes it to disk.
func (s *DiskStorage) Save(src io.Reader) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, errors.BadRequest("failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, errors.BadRequest("No file uploaded")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, errors.BadRequest(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), Allowed...) {
		return nil, errors.BadRequest("Invalid file type. Only JPEG, PNG, GIF, and PDF files are allowed.")
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to store file", http.StatusInternalServerError)
	}

	return &File{
		URL:      path.Join(s.publicPath, name),
		Filename: name,
		Size:     int64(len(data)),
		Mimetype: mt.String(),
	}, nil
}
