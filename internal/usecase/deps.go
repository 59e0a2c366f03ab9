package usecase

import (
	"context"

	"watch-list/internal/tmdb"
)

// TMDbClient is the part of the TMDb API the services rely on.
type TMDbClient interface {
	Configured() bool
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
	SearchTV(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
	GetMovie(ctx context.Context, id int64) (*tmdb.Movie, error)
	GetTV(ctx context.Context, id int64) (*tmdb.TVShow, error)
	GetPerson(ctx context.Context, id int64) (*tmdb.Person, error)
	ImageURL(path string) *string
	DownloadImage(ctx context.Context, path string) ([]byte, error)
}

// ObjectStore is where processed images live.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type ImageProcessor interface {
	Process(data []byte, kind string) ([]byte, error)
}

// Deps bundles the external collaborators. Storage may be nil when no
// bucket is configured.
type Deps struct {
	TMDb    TMDbClient
	Storage ObjectStore
	Images  ImageProcessor
}
