package adaptor

import (
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"go.uber.org/zap"
)

type SearchHandler struct {
	service usecase.SearchService
	log     *zap.Logger
}

func NewSearchHandler(service usecase.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		log:     log.With(zap.String("handler", "search")),
	}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchRequest{
		PaginatedRequest: paginationFromQuery(r),
		Query:            query.Get("q"),
		Type:             query.Get("type"),
	}
	if req.Type == "" {
		req.Type = "all"
	}

	result, err := h.service.Search(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search")
		return
	}

	utils.ResponseSuccess(w, "Search completed", result)
}

// Genres handles GET /api/genres
func (h *SearchHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list genres")
		return
	}

	utils.ResponseSuccess(w, "Genres retrieved successfully", genres)
}

// Home handles GET /api/home
func (h *SearchHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.service.Home(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "load home")
		return
	}

	utils.ResponseSuccess(w, "Home retrieved successfully", home)
}
