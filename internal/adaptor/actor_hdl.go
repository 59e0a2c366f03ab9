package adaptor

import (
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ActorHandler struct {
	service usecase.ActorService
	log     *zap.Logger
}

func NewActorHandler(service usecase.ActorService, log *zap.Logger) *ActorHandler {
	return &ActorHandler{
		service: service,
		log:     log.With(zap.String("handler", "actor")),
	}
}

// GetActor handles GET /api/actors/{id}
func (h *ActorHandler) GetActor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.service.GetActor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get actor")
		return
	}

	utils.ResponseSuccess(w, "Actor retrieved successfully", actor)
}

// UpdateActor handles PUT /api/admin/actors/{id}
func (h *ActorHandler) UpdateActor(w http.ResponseWriter, r *http.Request) {
	var req request.ActorUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	actor, err := h.service.UpdateActor(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update actor")
		return
	}

	utils.ResponseSuccess(w, "Actor updated successfully", actor)
}

// DeleteActor handles DELETE /api/admin/actors/{id}
func (h *ActorHandler) DeleteActor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteActor(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete actor")
		return
	}

	utils.ResponseSuccess(w, "Actor deleted successfully", nil)
}

// RefreshActor handles POST /api/admin/actors/{id}/refresh
func (h *ActorHandler) RefreshActor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.service.RefreshActor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "refresh actor")
		return
	}

	utils.ResponseSuccess(w, "Actor refreshed from TMDb", actor)
}
