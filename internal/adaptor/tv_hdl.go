package adaptor

import (
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TVHandler struct {
	service usecase.TVService
	log     *zap.Logger
}

func NewTVHandler(service usecase.TVService, log *zap.Logger) *TVHandler {
	return &TVHandler{
		service: service,
		log:     log.With(zap.String("handler", "tv")),
	}
}

// GetShows handles GET /api/tv
func (h *TVHandler) GetShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.service.GetShows(r.Context(), mediaListFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list tv shows")
		return
	}

	utils.ResponseSuccess(w, "TV shows retrieved successfully", shows)
}

// GetShow handles GET /api/tv/{id}
func (h *TVHandler) GetShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.service.GetShowByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get tv show")
		return
	}

	utils.ResponseSuccess(w, "TV show retrieved successfully", show)
}

// UpdateShow handles PUT /api/admin/tv/{id}
func (h *TVHandler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	var req request.TVUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	show, err := h.service.UpdateShow(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update tv show")
		return
	}

	utils.ResponseSuccess(w, "TV show updated successfully", show)
}

// DeleteShow handles DELETE /api/admin/tv/{id}
func (h *TVHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShow(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete tv show")
		return
	}

	utils.ResponseSuccess(w, "TV show deleted successfully", nil)
}
