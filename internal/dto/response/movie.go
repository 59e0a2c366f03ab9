package response

import (
	"time"

	"watch-list/internal/data/entity"
)

type MovieResponse struct {
	ID            string    `json:"id"`
	TMDbID        *int64    `json:"tmdb_id,omitempty"`
	Title         string    `json:"title"`
	OriginalTitle *string   `json:"original_title,omitempty"`
	Overview      *string   `json:"overview,omitempty"`
	Tagline       *string   `json:"tagline,omitempty"`
	ReleaseDate   *string   `json:"release_date,omitempty"`
	Runtime       *int      `json:"runtime,omitempty"`
	Status        *string   `json:"status,omitempty"`
	Genres        []string  `json:"genres"`
	VoteAverage   float64   `json:"vote_average"`
	VoteCount     int       `json:"vote_count"`
	Popularity    float64   `json:"popularity"`
	PosterURL     *string   `json:"poster_url,omitempty"`
	BackdropURL   *string   `json:"backdrop_url,omitempty"`
	IMDbID        *string   `json:"imdb_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MovieDetailResponse struct {
	MovieResponse
	Cast    []CastResponse      `json:"cast"`
	Reviews ReviewStatsResponse `json:"reviews"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func nonNilGenres(genres []string) []string {
	if genres == nil {
		return []string{}
	}
	return genres
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:            movie.ID.String(),
		TMDbID:        movie.TMDbID,
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		Overview:      movie.Overview,
		Tagline:       movie.Tagline,
		ReleaseDate:   formatDate(movie.ReleaseDate),
		Runtime:       movie.Runtime,
		Status:        movie.Status,
		Genres:        nonNilGenres(movie.Genres),
		VoteAverage:   movie.VoteAverage,
		VoteCount:     movie.VoteCount,
		Popularity:    movie.Popularity,
		PosterURL:     movie.PosterURL,
		BackdropURL:   movie.BackdropURL,
		IMDbID:        movie.IMDbID,
		CreatedAt:     movie.CreatedAt,
		UpdatedAt:     movie.UpdatedAt,
	}
}

func MoviesToResponse(movies []*entity.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, MovieToResponse(m))
	}
	return out
}
