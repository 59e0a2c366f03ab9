package adaptor

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const uploadField = "file"

type ImageHandler struct {
	service  usecase.ImageService
	maxBytes int64
	log      *zap.Logger
}

func NewImageHandler(service usecase.ImageService, maxUploadMB int, log *zap.Logger) *ImageHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ImageHandler{
		service:  service,
		maxBytes: int64(maxUploadMB) << 20,
		log:      log.With(zap.String("handler", "image")),
	}
}

// Upload handles POST /api/admin/images/{type}/{id}/{kind}
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// multipart framing needs a little headroom over the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	data, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseTooLarge(w, fmt.Sprintf("Image exceeds %d MB", h.maxBytes>>20))
			return
		}
		h.log.Debug("Invalid upload", zap.Error(err))
		utils.ResponseBadRequest(w, "A multipart field named \"file\" is required", nil)
		return
	}
	if int64(len(data)) > h.maxBytes {
		utils.ResponseTooLarge(w, fmt.Sprintf("Image exceeds %d MB", h.maxBytes>>20))
		return
	}

	image, err := h.service.Upload(r.Context(),
		chi.URLParam(r, "type"), chi.URLParam(r, "id"), chi.URLParam(r, "kind"), data)
	if err != nil {
		handleServiceError(w, h.log, err, "upload image")
		return
	}

	utils.ResponseSuccess(w, "Image uploaded successfully", image)
}

func (h *ImageHandler) readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// Sync handles POST /api/admin/images/{type}/{id}/sync. Partial failures are
// reported in the body with a 200.
func (h *ImageHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "sync images")
		return
	}

	utils.ResponseSuccess(w, "Images synced", result)
}

// Delete handles DELETE /api/admin/images/{type}/{id}/{kind}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id"), chi.URLParam(r, "kind"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete image")
		return
	}

	utils.ResponseSuccess(w, "Image deleted successfully", nil)
}
