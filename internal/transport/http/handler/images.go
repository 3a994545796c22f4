package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	s3infra "github.com/bombers-push/internal/infrastructure/s3"
	"github.com/bombers-push/internal/pkg/id"
)

const maxImageSize = 5 << 20 // 5 MiB

// ImageStore is the object-storage surface the image handler needs.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// ImageHandler uploads notification images and returns the URL to use as imageUrl.
type ImageHandler struct {
	store ImageStore
}

func NewImageHandler(store ImageStore) *ImageHandler { return &ImageHandler{store: store} }

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	key := "notifications/" + id.New() + filepath.Ext(header.Filename)
	url, err := h.store.Upload(r.Context(), key, file, s3infra.DetectContentType(header.Filename))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ImageEnvelope{URL: url})
}
