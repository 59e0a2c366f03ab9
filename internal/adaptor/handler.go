package adaptor

import (
	"errors"
	"io"
	"net/http"

	"watch-list/internal/dto/request"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Movie  *MovieHandler
	TV     *TVHandler
	Actor  *ActorHandler
	Search *SearchHandler
	Review *ReviewHandler
	Import *ImportHandler
	Image  *ImageHandler
	Admin  *AdminHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(service.Auth, config.JWT, log),
		User:   NewUserHandler(service.User, log),
		Movie:  NewMovieHandler(service.Movie, log),
		TV:     NewTVHandler(service.TV, log),
		Actor:  NewActorHandler(service.Actor, log),
		Search: NewSearchHandler(service.Search, log),
		Review: NewReviewHandler(service.Review, log),
		Import: NewImportHandler(service.Import, log),
		Image:  NewImageHandler(service.Image, config.Image.MaxUploadMB, log),
		Admin:  NewAdminHandler(service.OperationLog, service.Stats, log),
	}
}

// handleServiceError maps the usecase sentinels onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Debug(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Debug(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Debug(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, "Invalid credentials")

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrUpstream):
		log.Error(operation+" failed - upstream", zap.Error(err))
		utils.ResponseBadGateway(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeBody writes the 400 itself and reports whether decoding succeeded.
// maxJSONBody caps JSON request bodies, including unauthenticated ones.
const maxJSONBody = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseJSON(w, http.StatusRequestEntityTooLarge, false, "Request body too large", nil, nil)
			return false
		}
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// paginationFromQuery reads page and per_page, defaulting and capping them.
func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	req := request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
	if req.PerPage > request.MaxPerPage {
		req.PerPage = request.MaxPerPage
	}
	return req
}

func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return userID.String(), true
}
