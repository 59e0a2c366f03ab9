package adaptor

import (
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the audit trail and the dashboard.
type AdminHandler struct {
	oplog usecase.OperationLogService
	stats usecase.StatsService
	log   *zap.Logger
}

func NewAdminHandler(oplog usecase.OperationLogService, stats usecase.StatsService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		oplog: oplog,
		stats: stats,
		log:   log.With(zap.String("handler", "admin")),
	}
}

// ListLogs handles GET /api/admin/logs
func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.OperationLogListRequest{
		PaginatedRequest: paginationFromQuery(r),
		Action:           query.Get("action"),
		ResourceType:     query.Get("resource_type"),
		UserID:           query.Get("user_id"),
		Query:            query.Get("q"),
	}

	logs, err := h.oplog.List(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list operation logs")
		return
	}

	utils.ResponseSuccess(w, "Operation logs retrieved successfully", logs)
}

// GetLog handles GET /api/admin/logs/{id}
func (h *AdminHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	entry, err := h.oplog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get operation log")
		return
	}

	utils.ResponseSuccess(w, "Operation log retrieved successfully", entry)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "load dashboard")
		return
	}

	utils.ResponseSuccess(w, "Stats retrieved successfully", stats)
}
