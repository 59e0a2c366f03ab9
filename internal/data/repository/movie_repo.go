package repository

import (
	"context"
	"fmt"

	"watch-list/internal/data/entity"
	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MovieRepository interface {
	// Upsert inserts or refreshes a movie keyed by tmdb_id. Existing image
	// URLs are kept so OSS copies survive a re-import.
	Upsert(ctx context.Context, movie *entity.Movie) (uuid.UUID, bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error)
	FindByTMDbIDs(ctx context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error)
	FindAll(ctx context.Context, filter MediaFilter, limit, offset int) ([]*entity.Movie, error)
	CountAll(ctx context.Context, filter MediaFilter) (int64, error)
	Search(ctx context.Context, q string, limit, offset int) ([]*entity.Movie, error)
	CountSearch(ctx context.Context, q string) (int64, error)
	Update(ctx context.Context, movie *entity.Movie) error
	UpdateImage(ctx context.Context, id uuid.UUID, kind string, url *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

const movieColumns = `id, tmdb_id, title, original_title, overview, tagline, release_date,
	runtime, status, genres, vote_average, vote_count, popularity, poster_url,
	backdrop_url, imdb_id, created_at, updated_at`

func (r *movieRepository) Upsert(ctx context.Context, movie *entity.Movie) (uuid.UUID, bool, error) {
	query := `
		INSERT INTO movies (` + movieColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		ON CONFLICT (tmdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			original_title = EXCLUDED.original_title,
			overview = EXCLUDED.overview,
			tagline = EXCLUDED.tagline,
			release_date = EXCLUDED.release_date,
			runtime = EXCLUDED.runtime,
			status = EXCLUDED.status,
			genres = EXCLUDED.genres,
			vote_average = EXCLUDED.vote_average,
			vote_count = EXCLUDED.vote_count,
			popularity = EXCLUDED.popularity,
			poster_url = COALESCE(movies.poster_url, EXCLUDED.poster_url),
			backdrop_url = COALESCE(movies.backdrop_url, EXCLUDED.backdrop_url),
			imdb_id = EXCLUDED.imdb_id,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`

	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	if movie.Genres == nil {
		movie.Genres = []string{}
	}

	var id uuid.UUID
	var inserted bool
	err := r.db.QueryRow(ctx, query,
		movie.ID,
		movie.TMDbID,
		movie.Title,
		movie.OriginalTitle,
		movie.Overview,
		movie.Tagline,
		movie.ReleaseDate,
		movie.Runtime,
		movie.Status,
		movie.Genres,
		movie.VoteAverage,
		movie.VoteCount,
		movie.Popularity,
		movie.PosterURL,
		movie.BackdropURL,
		movie.IMDbID,
	).Scan(&id, &inserted)
	if err != nil {
		r.log.Error("Failed to upsert movie",
			zap.Error(err),
			zap.Int64p("tmdb_id", movie.TMDbID),
			zap.String("title", movie.Title),
		)
		return uuid.Nil, false, fmt.Errorf("upsert movie %q: %w", movie.Title, err)
	}

	movie.ID = id
	return id, inserted, nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	var movie entity.Movie
	err := pgxscan.Get(ctx, r.db, &movie, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return nil, fmt.Errorf("find movie %s: %w", id.String(), err)
	}

	return &movie, nil
}

func (r *movieRepository) FindByTMDbIDs(ctx context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error) {
	result := make(map[int64]uuid.UUID, len(tmdbIDs))
	if len(tmdbIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID     uuid.UUID `db:"id"`
		TMDbID int64     `db:"tmdb_id"`
	}
	err := pgxscan.Select(ctx, r.db, &rows, `SELECT id, tmdb_id FROM movies WHERE tmdb_id = ANY($1)`, tmdbIDs)
	if err != nil {
		r.log.Error("Failed to find movies by TMDb IDs", zap.Error(err), zap.Int("count", len(tmdbIDs)))
		return nil, fmt.Errorf("find movies by tmdb ids: %w", err)
	}

	for _, row := range rows {
		result[row.TMDbID] = row.ID
	}
	return result, nil
}

func (r *movieRepository) FindAll(ctx context.Context, filter MediaFilter, limit, offset int) ([]*entity.Movie, error) {
	where, orderBy, args := buildMediaListQuery(filter, "release_date")
	query := fmt.Sprintf(`SELECT %s FROM movies%s%s LIMIT $%d OFFSET $%d`,
		movieColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var movies []*entity.Movie
	if err := pgxscan.Select(ctx, r.db, &movies, query, args...); err != nil {
		r.log.Error("Failed to find all movies",
			zap.Error(err),
			zap.String("genre", filter.Genre),
			zap.Int("year", filter.Year),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find movies: %w", err)
	}

	r.log.Debug("Movies found",
		zap.Int("count", len(movies)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)

	return movies, nil
}

func (r *movieRepository) CountAll(ctx context.Context, filter MediaFilter) (int64, error) {
	where, _, args := buildMediaListQuery(filter, "release_date")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count movies", zap.Error(err))
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return total, nil
}

func (r *movieRepository) Search(ctx context.Context, q string, limit, offset int) ([]*entity.Movie, error) {
	query := `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE title ILIKE $1 OR original_title ILIKE $1
		ORDER BY popularity DESC, id
		LIMIT $2 OFFSET $3
	`

	var movies []*entity.Movie
	if err := pgxscan.Select(ctx, r.db, &movies, query, likePattern(q), limit, offset); err != nil {
		r.log.Error("Failed to search movies", zap.Error(err), zap.String("q", q))
		return nil, fmt.Errorf("search movies: %w", err)
	}

	return movies, nil
}

func (r *movieRepository) CountSearch(ctx context.Context, q string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM movies WHERE title ILIKE $1 OR original_title ILIKE $1`,
		likePattern(q),
	).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count movie search", zap.Error(err), zap.String("q", q))
		return 0, fmt.Errorf("count movie search: %w", err)
	}

	return total, nil
}

func (r *movieRepository) Update(ctx context.Context, movie *entity.Movie) error {
	query := `
		UPDATE movies
		SET title = $2, overview = $3, tagline = $4, release_date = $5,
		    runtime = $6, status = $7, genres = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Overview,
		movie.Tagline,
		movie.ReleaseDate,
		movie.Runtime,
		movie.Status,
		movie.Genres,
	)
	if err != nil {
		r.log.Error("Failed to update movie",
			zap.Error(err),
			zap.String("movie_id", movie.ID.String()),
		)
		return fmt.Errorf("update movie %s: %w", movie.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s: %w", movie.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *movieRepository) UpdateImage(ctx context.Context, id uuid.UUID, kind string, url *string) error {
	column, err := imageColumn(entity.ResourceMovie, kind)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`UPDATE movies SET `+column+` = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		r.log.Error("Failed to update movie image",
			zap.Error(err),
			zap.String("movie_id", id.String()),
			zap.String("kind", kind),
		)
		return fmt.Errorf("update movie %s %s: %w", id.String(), kind, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *movieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete movie",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return fmt.Errorf("delete movie %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Movie deleted", zap.String("movie_id", id.String()))
	return nil
}

func (r *movieRepository) FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	return findPendingImages(ctx, r.db, "movies", []string{"poster_url", "backdrop_url"}, ossPrefix, limit)
}
