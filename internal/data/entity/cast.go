package entity

import (
	"time"

	"github.com/google/uuid"
)

// CastEntry is one row of movie_casts or tv_casts; MediaID points at the
// movie or the tv show depending on the table.
type CastEntry struct {
	ID        uuid.UUID `db:"id"`
	MediaID   uuid.UUID `db:"media_id"`
	ActorID   uuid.UUID `db:"actor_id"`
	Character string    `db:"character"`
	CastOrder int       `db:"cast_order"`
}

// CastMember is a cast row joined with its actor.
type CastMember struct {
	ActorID    uuid.UUID `db:"actor_id"`
	Name       string    `db:"name"`
	ProfileURL *string   `db:"profile_url"`
	Character  string    `db:"character"`
	CastOrder  int       `db:"cast_order"`
}

// Credit is a cast row joined with its movie or tv show.
type Credit struct {
	MediaID   uuid.UUID  `db:"media_id"`
	Title     string     `db:"title"`
	PosterURL *string    `db:"poster_url"`
	Character string     `db:"character"`
	Date      *time.Time `db:"date"`
}
