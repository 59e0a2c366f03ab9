package adaptor

import (
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"go.uber.org/zap"
)

type ImportHandler struct {
	service usecase.ImportService
	log     *zap.Logger
}

func NewImportHandler(service usecase.ImportService, log *zap.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		log:     log.With(zap.String("handler", "import")),
	}
}

// SearchTMDb handles GET /api/admin/tmdb/search
func (h *ImportHandler) SearchTMDb(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.TMDbSearchRequest{
		Query: query.Get("q"),
		Type:  query.Get("type"),
		Page:  utils.ParseInt(query.Get("page"), 1),
	}

	results, err := h.service.SearchTMDb(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search tmdb")
		return
	}

	utils.ResponseSuccess(w, "TMDb search completed", results)
}

// ImportMovie handles POST /api/admin/import/movie
func (h *ImportHandler) ImportMovie(w http.ResponseWriter, r *http.Request) {
	var req request.ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ImportMovie(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "import movie")
		return
	}

	utils.ResponseSuccess(w, "Movie imported successfully", result)
}

// ImportTV handles POST /api/admin/import/tv
func (h *ImportHandler) ImportTV(w http.ResponseWriter, r *http.Request) {
	var req request.ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ImportTV(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "import tv show")
		return
	}

	utils.ResponseSuccess(w, "TV show imported successfully", result)
}
