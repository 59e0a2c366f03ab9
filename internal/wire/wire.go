package wire

import (
	"net/http"
	"time"

	"watch-list/internal/adaptor"
	"watch-list/internal/data/repository"
	"watch-list/internal/usecase"
	"watch-list/pkg/middleware"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// authRateLimit caps login and register attempts per client IP.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// App holds the assembled HTTP surface.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router on top of repo.
func Wiring(repo *repository.Repository, deps usecase.Deps, config *utils.Config, logger *zap.Logger) (*App, error) {
	jwt, err := utils.NewJWTManager(config.JWT)
	if err != nil {
		return nil, err
	}

	trusted, err := utils.ParseTrustedProxies(config.App.TrustedProxies)
	if err != nil {
		return nil, err
	}

	service := usecase.NewService(repo, config, jwt, deps, logger)
	handler := adaptor.NewHandler(service, config, logger)
	metrics := middleware.NewMetrics("watchlist")

	router := setupRouter(handler, repo, jwt, trusted, metrics, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}, nil
}

// guards bundles the middleware chains routes pick from.
type guards struct {
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	jwt *utils.JWTManager,
	trusted utils.TrustedProxies,
	metrics *middleware.Metrics,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.ClientIP(trusted))
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(config.App.CORSOrigins))

	g := guards{
		auth:  middleware.Auth(jwt, config.JWT.CookieName, logger),
		admin: middleware.Admin(repo.User, logger),
	}

	wireAuth(r, handler.Auth, g)
	wireCatalog(r, handler)
	wireReview(r, handler.Review, g)
	wireAdmin(r, handler, g)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil, nil)
	})

	return r
}
