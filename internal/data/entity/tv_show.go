package entity

import (
	"time"
)

type TVShow struct {
	Base
	TMDbID           *int64     `db:"tmdb_id"`
	Name             string     `db:"name"`
	OriginalName     *string    `db:"original_name"`
	Overview         *string    `db:"overview"`
	FirstAirDate     *time.Time `db:"first_air_date"`
	LastAirDate      *time.Time `db:"last_air_date"`
	NumberOfSeasons  *int       `db:"number_of_seasons"`
	NumberOfEpisodes *int       `db:"number_of_episodes"`
	Status           *string    `db:"status"`
	Genres           []string   `db:"genres"`
	VoteAverage      float64    `db:"vote_average"`
	VoteCount        int        `db:"vote_count"`
	Popularity       float64    `db:"popularity"`
	PosterURL        *string    `db:"poster_url"`
	BackdropURL      *string    `db:"backdrop_url"`
}
