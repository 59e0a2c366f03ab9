package wire

import (
	"watch-list/internal/adaptor"
	"watch-list/internal/data/entity"

	"github.com/go-chi/chi/v5"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, g guards) {
	r.Get("/api/movies/{id}/reviews", reviewHandler.List(entity.KindMovie))
	r.Get("/api/tv/{id}/reviews", reviewHandler.List(entity.KindTV))

	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/movies/{id}/reviews", reviewHandler.Create(entity.KindMovie))
		r.Post("/api/tv/{id}/reviews", reviewHandler.Create(entity.KindTV))
		r.Delete("/api/reviews/{kind}/{id}", reviewHandler.Delete)
	})
}
