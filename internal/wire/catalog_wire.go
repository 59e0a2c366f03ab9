package wire

import (
	"watch-list/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireCatalog registers the public browsing routes.
func wireCatalog(r chi.Router, handler *adaptor.Handler) {
	r.Get("/api/movies", handler.Movie.GetMovies)
	r.Get("/api/movies/{id}", handler.Movie.GetMovie)

	r.Get("/api/tv", handler.TV.GetShows)
	r.Get("/api/tv/{id}", handler.TV.GetShow)

	r.Get("/api/actors/{id}", handler.Actor.GetActor)

	r.Get("/api/search", handler.Search.Search)
	r.Get("/api/genres", handler.Search.Genres)
	r.Get("/api/home", handler.Search.Home)
}
