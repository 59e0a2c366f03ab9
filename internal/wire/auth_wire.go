package wire

import (
	"watch-list/internal/adaptor"
	"watch-list/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(authRateLimit, authRateWindow))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Post("/logout", authHandler.Logout)
		r.With(g.auth).Get("/me", authHandler.Me)
	})
}
