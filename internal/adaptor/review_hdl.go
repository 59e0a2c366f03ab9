package adaptor

import (
	"net/http"

	"watch-list/internal/data/entity"
	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// List returns the handler for GET /api/{movies|tv}/{id}/reviews
func (h *ReviewHandler) List(kind entity.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := paginationFromQuery(r)

		reviews, err := h.service.GetReviews(r.Context(), kind, chi.URLParam(r, "id"), &req)
		if err != nil {
			handleServiceError(w, h.log, err, "list reviews")
			return
		}

		utils.ResponseSuccess(w, "Reviews retrieved successfully", reviews)
	}
}

// Create returns the handler for POST /api/{movies|tv}/{id}/reviews
func (h *ReviewHandler) Create(kind entity.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUserID(w, r)
		if !ok {
			return
		}

		var req request.CreateReviewRequest
		if !decodeBody(w, r, &req) {
			return
		}

		review, err := h.service.CreateReview(r.Context(), kind, chi.URLParam(r, "id"), userID, &req)
		if err != nil {
			handleServiceError(w, h.log, err, "create review")
			return
		}

		utils.ResponseCreated(w, "Review created successfully", review)
	}
}

// Delete handles DELETE /api/reviews/{kind}/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	kind := entity.MediaKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		utils.ResponseNotFound(w, "Unknown review kind")
		return
	}

	if err := h.service.DeleteReview(r.Context(), kind, chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted successfully", nil)
}

// AdminList handles GET /api/admin/reviews
func (h *ReviewHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	req := &request.ReviewListRequest{
		PaginatedRequest: paginationFromQuery(r),
		Kind:             r.URL.Query().Get("kind"),
	}

	reviews, err := h.service.GetRecentReviews(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list recent reviews")
		return
	}

	utils.ResponseSuccess(w, "Reviews retrieved successfully", reviews)
}
