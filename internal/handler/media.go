package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/msomdec/bookshelf/internal/domain"
)

// MediaReader loads stored media objects by key.
type MediaReader interface {
	Get(ctx context.Context, key string) (*domain.MediaObject, error)
}

// MediaHandler serves images kept in the local blob store.
type MediaHandler struct {
	media MediaReader
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media MediaReader) *MediaHandler {
	return &MediaHandler{media: media}
}

// HandleGet streams an image.
// GET /api/media/{key...}
func (h *MediaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	obj, err := h.media.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Data)
}
