package images

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/simple-mercari/catalog/app/api"
	"github.com/simple-mercari/catalog/app/blobstore"
)

type ImageProvider interface {
	Open(name string) (blobstore.Lookup, error)
}

type ImageHandler struct {
	store ImageProvider
	log   *zap.Logger
}

func NewImageHandler(s ImageProvider, log *zap.Logger) *ImageHandler {
	return &ImageHandler{store: s, log: log}
}

// HandleGet serves GET /image/{image_name}. A missing image is answered
// with the placeholder rather than a 404.
func (h *ImageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("image_name")
	log := api.Logger(r.Context(), h.log)

	lookup, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, blobstore.ErrInvalidPath) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Image name must not contain a path")
			return
		}
		if errors.Is(err, blobstore.ErrInvalidName) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Image path does not end with .jpg")
			return
		}
		log.Error("failed to open image", zap.String("image_name", name), zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load image")
		return
	}
	if lookup.Fallback {
		log.Debug("image not found, serving placeholder", zap.String("image_name", name))
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, lookup.Path)
}
