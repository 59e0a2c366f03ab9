package entity

import (
	"github.com/google/uuid"
)

// MediaKind selects between the movie and tv tables that share a shape.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindTV
}

type Review struct {
	Base
	Kind       MediaKind `db:"kind"`
	MediaID    uuid.UUID `db:"media_id"`
	MediaTitle string    `db:"media_title"`
	UserID     uuid.UUID `db:"user_id"`
	Username   string    `db:"username"`
	Rating     int       `db:"rating"` // 1-10
	Content    *string   `db:"content"`
}

type ReviewStats struct {
	AverageRating float64 `db:"average_rating"`
	ReviewCount   int64   `db:"review_count"`
}
