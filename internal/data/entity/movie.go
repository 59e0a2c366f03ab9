package entity

import (
	"time"
)

type Movie struct {
	Base
	TMDbID        *int64     `db:"tmdb_id"`
	Title         string     `db:"title"`
	OriginalTitle *string    `db:"original_title"`
	Overview      *string    `db:"overview"`
	Tagline       *string    `db:"tagline"`
	ReleaseDate   *time.Time `db:"release_date"`
	Runtime       *int       `db:"runtime"`
	Status        *string    `db:"status"`
	Genres        []string   `db:"genres"`
	VoteAverage   float64    `db:"vote_average"`
	VoteCount     int        `db:"vote_count"`
	Popularity    float64    `db:"popularity"`
	PosterURL     *string    `db:"poster_url"`
	BackdropURL   *string    `db:"backdrop_url"`
	IMDbID        *string    `db:"imdb_id"`
}
