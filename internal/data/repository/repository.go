package repository

import (
	"errors"
	"strings"

	"watch-list/internal/data/entity"
	"watch-list/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by mutations that matched no row. Lookups
	// return (nil, nil) instead.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate wraps unique constraint violations.
	ErrDuplicate = errors.New("already exists")
)

type Repository struct {
	User         UserRepository
	Movie        MovieRepository
	TV           TVRepository
	Actor        ActorRepository
	Cast         CastRepository
	Review       ReviewRepository
	OperationLog OperationLogRepository
	Stats        StatsRepository
	Housekeeping HousekeepingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Movie:        NewMovieRepository(db, log),
		TV:           NewTVRepository(db, log),
		Actor:        NewActorRepository(db, log),
		Cast:         NewCastRepository(db, log),
		Review:       NewReviewRepository(db, log),
		OperationLog: NewOperationLogRepository(db, log),
		Stats:        NewStatsRepository(db, log),
		Housekeeping: NewHousekeepingRepository(db, log),
	}
}

// MediaFilter narrows movie and tv listings.
type MediaFilter struct {
	Genre string
	Year  int
	Sort  string
}

const (
	SortPopularity  = "popularity"
	SortReleaseDate = "release_date"
	SortVoteAverage = "vote_average"
	SortCreatedAt   = "created_at"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// likePattern escapes LIKE metacharacters and wraps q for a substring match.
func likePattern(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(q) + "%"
}

// mediaTables maps a kind onto the table pair holding its rows.
type mediaTables struct {
	media   string
	fk      string
	title   string
	date    string
	casts   string
	reviews string
}

func tablesFor(kind entity.MediaKind) mediaTables {
	if kind == entity.KindTV {
		return mediaTables{
			media: "tv_shows", fk: "tv_show_id", title: "name", date: "first_air_date",
			casts: "tv_casts", reviews: "tv_reviews",
		}
	}
	return mediaTables{
		media: "movies", fk: "movie_id", title: "title", date: "release_date",
		casts: "movie_casts", reviews: "movie_reviews",
	}
}
