package wire

import (
	"watch-list/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireAdmin mounts everything under /api/admin behind Auth and Admin.
func wireAdmin(r chi.Router, handler *adaptor.Handler, g guards) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(g.auth)
		r.Use(g.admin)

		r.Get("/stats", handler.Admin.Stats)
		r.Get("/logs", handler.Admin.ListLogs)
		r.Get("/logs/{id}", handler.Admin.GetLog)

		r.Get("/tmdb/search", handler.Import.SearchTMDb)
		r.Post("/import/movie", handler.Import.ImportMovie)
		r.Post("/import/tv", handler.Import.ImportTV)

		r.Put("/movies/{id}", handler.Movie.UpdateMovie)
		r.Delete("/movies/{id}", handler.Movie.DeleteMovie)
		r.Put("/tv/{id}", handler.TV.UpdateShow)
		r.Delete("/tv/{id}", handler.TV.DeleteShow)
		r.Put("/actors/{id}", handler.Actor.UpdateActor)
		r.Delete("/actors/{id}", handler.Actor.DeleteActor)
		r.Post("/actors/{id}/refresh", handler.Actor.RefreshActor)

		r.Post("/images/{type}/{id}/sync", handler.Image.Sync)
		r.Post("/images/{type}/{id}/{kind}", handler.Image.Upload)
		r.Delete("/images/{type}/{id}/{kind}", handler.Image.Delete)

		r.Get("/users", handler.User.GetAllUsers)
		r.Put("/users/{id}/role", handler.User.UpdateRole)
		r.Delete("/users/{id}", handler.User.DeleteUser)

		r.Get("/reviews", handler.Review.AdminList)
	})
}
