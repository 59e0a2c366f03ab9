package entity

import (
	"time"
)

type Actor struct {
	Base
	TMDbID       *int64     `db:"tmdb_id"`
	Name         string     `db:"name"`
	Biography    *string    `db:"biography"`
	Birthday     *time.Time `db:"birthday"`
	PlaceOfBirth *string    `db:"place_of_birth"`
	ProfileURL   *string    `db:"profile_url"`
	Popularity   float64    `db:"popularity"`
}
