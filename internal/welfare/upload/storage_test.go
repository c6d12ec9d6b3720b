package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesias/mswdo-backend/pkg/config"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// Smallest byte sequences the detector recognises.
var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
)

func newStorage(t *testing.T, max int64) *DiskStorage {
	t.Helper()
	s, err := NewDiskStorage(config.UploadConfig{Dir: filepath.Join(t.TempDir(), "uploads"), MaxBytes: max, PublicPath: "/uploads"})
	require.NoError(t, err)
	return s
}

func TestSave(t *testing.T) {
	s := newStorage(t, 1024)

	for name, data := range map[string][]byte{"png": pngHeader, "pdf": pdfHeader} {
		t.Run(name, func(t *testing.T) {
			f, err := s.Save(bytes.NewReader(data))
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(f.URL, "/uploads/"))
			assert.True(t, strings.HasSuffix(f.Filename, "."+name))
			assert.Equal(t, int64(len(data)), f.Size)

			stored, err := os.ReadFile(filepath.Join(s.Dir(), f.Filename))
			require.NoError(t, err)
			assert.Equal(t, data, stored)
		})
	}
}

func TestSave_Rejections(t *testing.T) {
	s := newStorage(t, 32)

	_, err := s.Save(strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = s.Save(bytes.NewReader(append(pdfHeader, bytes.Repeat([]byte("x"), 64)...)))
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = s.Save(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}
