package handler

import (
	"net/http"

	"github.com/mesias/mswdo-backend/internal/welfare/upload"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/httputil"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

// UploadHandler accepts supporting documents
type UploadHandler struct {
	storage *upload.DiskStorage
	log     *logger.Logger
}

func NewUploadHandler(storage *upload.DiskStorage, log *logger.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, log: log}
}

// Upload handles POST /upload with multipart field "file".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.storage.MaxBytes() + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		httputil.Error(w, errors.BadRequest("File too large or invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("No file uploaded"))
		return
	}
	defer file.Close()

	stored, err := h.storage.Save(file)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.log.Info().Str("filename", stored.Filename).Str("mimetype", stored.Mimetype).Int64("size", stored.Size).Msg("file uploaded")
	httputil.JSON(w, http.StatusOK, stored)
}
