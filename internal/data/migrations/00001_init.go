package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:text;uniqueIndex;not null"`
	Email     string    `gorm:"type:text;uniqueIndex;not null"`
	Password  string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:text;not null;default:'user'"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Movie struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TMDbID        *int64     `gorm:"column:tmdb_id;uniqueIndex"`
	Title         string     `gorm:"type:text;not null;index"`
	OriginalTitle *string    `gorm:"type:text"`
	Overview      *string    `gorm:"type:text"`
	Tagline       *string    `gorm:"type:text"`
	ReleaseDate   *time.Time `gorm:"type:date"`
	Runtime       *int       `gorm:"type:integer"`
	Status        *string    `gorm:"type:text"`
	VoteAverage   float64    `gorm:"not null;default:0"`
	VoteCount     int        `gorm:"not null;default:0"`
	Popularity    float64    `gorm:"not null;default:0;index"`
	PosterURL     *string    `gorm:"column:poster_url;type:text"`
	BackdropURL   *string    `gorm:"column:backdrop_url;type:text"`
	IMDbID        *string    `gorm:"column:imdb_id;type:text"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type TVShow struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TMDbID           *int64     `gorm:"column:tmdb_id;uniqueIndex"`
	Name             string     `gorm:"type:text;not null;index"`
	OriginalName     *string    `gorm:"type:text"`
	Overview         *string    `gorm:"type:text"`
	FirstAirDate     *time.Time `gorm:"type:date"`
	LastAirDate      *time.Time `gorm:"type:date"`
	NumberOfSeasons  *int       `gorm:"type:integer"`
	NumberOfEpisodes *int       `gorm:"type:integer"`
	Status           *string    `gorm:"type:text"`
	VoteAverage      float64    `gorm:"not null;default:0"`
	VoteCount        int        `gorm:"not null;default:0"`
	Popularity       float64    `gorm:"not null;default:0;index"`
	PosterURL        *string    `gorm:"column:poster_url;type:text"`
	BackdropURL      *string    `gorm:"column:backdrop_url;type:text"`
	CreatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (TVShow) TableName() string { return "tv_shows" }

type Actor struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TMDbID       *int64     `gorm:"column:tmdb_id;uniqueIndex"`
	Name         string     `gorm:"type:text;not null;index"`
	Biography    *string    `gorm:"type:text"`
	Birthday     *time.Time `gorm:"type:date"`
	PlaceOfBirth *string    `gorm:"type:text"`
	ProfileURL   *string    `gorm:"column:profile_url;type:text"`
	Popularity   float64    `gorm:"not null;default:0"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type MovieCast struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MovieID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_movie_casts_unique"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_movie_casts_unique"`
	Character string    `gorm:"type:text;not null;default:'';uniqueIndex:idx_movie_casts_unique"`
	CastOrder int       `gorm:"not null;default:0"`
	Movie     Movie     `gorm:"foreignKey:MovieID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Actor     Actor     `gorm:"foreignKey:ActorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type TVCast struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TVShowID  uuid.UUID `gorm:"column:tv_show_id;type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Character string    `gorm:"type:text;not null;default:''"`
	CastOrder int       `gorm:"not null;default:0"`
	TVShow    TVShow    `gorm:"foreignKey:TVShowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Actor     Actor     `gorm:"foreignKey:ActorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (TVCast) TableName() string { return "tv_casts" }

type MovieReview struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MovieID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_movie_reviews_movie_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_movie_reviews_movie_user"`
	Rating    int       `gorm:"not null;check:movie_reviews_rating_range,rating >= 1 AND rating <= 10"`
	Content   *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Movie     Movie     `gorm:"foreignKey:MovieID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type TVReview struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TVShowID  uuid.UUID `gorm:"column:tv_show_id;type:uuid;not null;uniqueIndex:idx_tv_reviews_show_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tv_reviews_show_user"`
	Rating    int       `gorm:"not null;check:tv_reviews_rating_range,rating >= 1 AND rating <= 10"`
	Content   *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	TVShow    TVShow    `gorm:"foreignKey:TVShowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (TVReview) TableName() string { return "tv_reviews" }

// OperationLog is the first audit-log shape, with live references to the
// touched content. 00002 replaces them with snapshot columns.
type OperationLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index"`
	Action    string            `gorm:"type:text;not null;index"`
	MovieID   *uuid.UUID        `gorm:"type:uuid"`
	TVShowID  *uuid.UUID        `gorm:"column:tv_show_id;type:uuid"`
	Details   datatypes.JSONMap `gorm:"type:jsonb"`
	IPAddress *string           `gorm:"type:text"`
	CreatedAt time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime;index"`
	User      *User             `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Movie     *Movie            `gorm:"foreignKey:MovieID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	TVShow    *TVShow           `gorm:"foreignKey:TVShowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openGorm(tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Movie{},
		&TVShow{},
		&Actor{},
		&MovieCast{},
		&TVCast{},
		&MovieReview{},
		&TVReview{},
		&OperationLog{},
	); err != nil {
		return err
	}

	// text[] has no natural gorm field type
	for _, table := range []string{"movies", "tv_shows"} {
		if _, err := tx.ExecContext(ctx,
			`ALTER TABLE `+table+` ADD COLUMN IF NOT EXISTS genres text[] NOT NULL DEFAULT '{}'`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS idx_`+table+`_genres ON `+table+` USING GIN (genres)`); err != nil {
			return err
		}
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openGorm(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&OperationLog{},
		&TVReview{},
		&MovieReview{},
		&TVCast{},
		&MovieCast{},
		&Actor{},
		&TVShow{},
		&Movie{},
		&User{},
	)
}
