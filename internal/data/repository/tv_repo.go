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

type TVRepository interface {
	// Upsert inserts or refreshes a tv show keyed by tmdb_id. Existing image
	// URLs are kept so OSS copies survive a re-import.
	Upsert(ctx context.Context, show *entity.TVShow) (uuid.UUID, bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TVShow, error)
	FindByTMDbIDs(ctx context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error)
	FindAll(ctx context.Context, filter MediaFilter, limit, offset int) ([]*entity.TVShow, error)
	CountAll(ctx context.Context, filter MediaFilter) (int64, error)
	Search(ctx context.Context, q string, limit, offset int) ([]*entity.TVShow, error)
	CountSearch(ctx context.Context, q string) (int64, error)
	Update(ctx context.Context, show *entity.TVShow) error
	UpdateImage(ctx context.Context, id uuid.UUID, kind string, url *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error)
}

type tvRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTVRepository(db database.PgxIface, log *zap.Logger) TVRepository {
	return &tvRepository{
		db:  db,
		log: log.With(zap.String("repository", "tv")),
	}
}

const tvColumns = `id, tmdb_id, name, original_name, overview, first_air_date, last_air_date,
	number_of_seasons, number_of_episodes, status, genres, vote_average, vote_count,
	popularity, poster_url, backdrop_url, created_at, updated_at`

func (r *tvRepository) Upsert(ctx context.Context, show *entity.TVShow) (uuid.UUID, bool, error) {
	query := `
		INSERT INTO tv_shows (` + tvColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		ON CONFLICT (tmdb_id) DO UPDATE SET
			name = EXCLUDED.name,
			original_name = EXCLUDED.original_name,
			overview = EXCLUDED.overview,
			first_air_date = EXCLUDED.first_air_date,
			last_air_date = EXCLUDED.last_air_date,
			number_of_seasons = EXCLUDED.number_of_seasons,
			number_of_episodes = EXCLUDED.number_of_episodes,
			status = EXCLUDED.status,
			genres = EXCLUDED.genres,
			vote_average = EXCLUDED.vote_average,
			vote_count = EXCLUDED.vote_count,
			popularity = EXCLUDED.popularity,
			poster_url = COALESCE(tv_shows.poster_url, EXCLUDED.poster_url),
			backdrop_url = COALESCE(tv_shows.backdrop_url, EXCLUDED.backdrop_url),
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`

	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	if show.Genres == nil {
		show.Genres = []string{}
	}

	var id uuid.UUID
	var inserted bool
	err := r.db.QueryRow(ctx, query,
		show.ID,
		show.TMDbID,
		show.Name,
		show.OriginalName,
		show.Overview,
		show.FirstAirDate,
		show.LastAirDate,
		show.NumberOfSeasons,
		show.NumberOfEpisodes,
		show.Status,
		show.Genres,
		show.VoteAverage,
		show.VoteCount,
		show.Popularity,
		show.PosterURL,
		show.BackdropURL,
	).Scan(&id, &inserted)
	if err != nil {
		r.log.Error("Failed to upsert tv show",
			zap.Error(err),
			zap.Int64p("tmdb_id", show.TMDbID),
			zap.String("name", show.Name),
		)
		return uuid.Nil, false, fmt.Errorf("upsert tv show %q: %w", show.Name, err)
	}

	show.ID = id
	return id, inserted, nil
}

func (r *tvRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TVShow, error) {
	var show entity.TVShow
	err := pgxscan.Get(ctx, r.db, &show, `SELECT `+tvColumns+` FROM tv_shows WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tv show by ID",
			zap.Error(err),
			zap.String("tv_show_id", id.String()),
		)
		return nil, fmt.Errorf("find tv show %s: %w", id.String(), err)
	}

	return &show, nil
}

func (r *tvRepository) FindByTMDbIDs(ctx context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error) {
	result := make(map[int64]uuid.UUID, len(tmdbIDs))
	if len(tmdbIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID     uuid.UUID `db:"id"`
		TMDbID int64     `db:"tmdb_id"`
	}
	err := pgxscan.Select(ctx, r.db, &rows, `SELECT id, tmdb_id FROM tv_shows WHERE tmdb_id = ANY($1)`, tmdbIDs)
	if err != nil {
		r.log.Error("Failed to find tv shows by TMDb IDs", zap.Error(err), zap.Int("count", len(tmdbIDs)))
		return nil, fmt.Errorf("find tv shows by tmdb ids: %w", err)
	}

	for _, row := range rows {
		result[row.TMDbID] = row.ID
	}
	return result, nil
}

func (r *tvRepository) FindAll(ctx context.Context, filter MediaFilter, limit, offset int) ([]*entity.TVShow, error) {
	where, orderBy, args := buildMediaListQuery(filter, "first_air_date")
	query := fmt.Sprintf(`SELECT %s FROM tv_shows%s%s LIMIT $%d OFFSET $%d`,
		tvColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var shows []*entity.TVShow
	if err := pgxscan.Select(ctx, r.db, &shows, query, args...); err != nil {
		r.log.Error("Failed to find all tv shows",
			zap.Error(err),
			zap.String("genre", filter.Genre),
			zap.Int("year", filter.Year),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find tv shows: %w", err)
	}

	r.log.Debug("TV shows found",
		zap.Int("count", len(shows)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)

	return shows, nil
}

func (r *tvRepository) CountAll(ctx context.Context, filter MediaFilter) (int64, error) {
	where, _, args := buildMediaListQuery(filter, "first_air_date")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tv_shows`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count tv shows", zap.Error(err))
		return 0, fmt.Errorf("count tv shows: %w", err)
	}

	return total, nil
}

func (r *tvRepository) Search(ctx context.Context, q string, limit, offset int) ([]*entity.TVShow, error) {
	query := `
		SELECT ` + tvColumns + `
		FROM tv_shows
		WHERE name ILIKE $1 OR original_name ILIKE $1
		ORDER BY popularity DESC, id
		LIMIT $2 OFFSET $3
	`

	var shows []*entity.TVShow
	if err := pgxscan.Select(ctx, r.db, &shows, query, likePattern(q), limit, offset); err != nil {
		r.log.Error("Failed to search tv shows", zap.Error(err), zap.String("q", q))
		return nil, fmt.Errorf("search tv shows: %w", err)
	}

	return shows, nil
}

func (r *tvRepository) CountSearch(ctx context.Context, q string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tv_shows WHERE name ILIKE $1 OR original_name ILIKE $1`,
		likePattern(q),
	).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count tv show search", zap.Error(err), zap.String("q", q))
		return 0, fmt.Errorf("count tv show search: %w", err)
	}

	return total, nil
}

func (r *tvRepository) Update(ctx context.Context, show *entity.TVShow) error {
	query := `
		UPDATE tv_shows
		SET name = $2, overview = $3, first_air_date = $4, last_air_date = $5,
		    number_of_seasons = $6, number_of_episodes = $7, status = $8,
		    genres = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		show.ID,
		show.Name,
		show.Overview,
		show.FirstAirDate,
		show.LastAirDate,
		show.NumberOfSeasons,
		show.NumberOfEpisodes,
		show.Status,
		show.Genres,
	)
	if err != nil {
		r.log.Error("Failed to update tv show",
			zap.Error(err),
			zap.String("tv_show_id", show.ID.String()),
		)
		return fmt.Errorf("update tv show %s: %w", show.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tv show %s: %w", show.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *tvRepository) UpdateImage(ctx context.Context, id uuid.UUID, kind string, url *string) error {
	column, err := imageColumn(entity.ResourceTV, kind)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`UPDATE tv_shows SET `+column+` = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		r.log.Error("Failed to update tv show image",
			zap.Error(err),
			zap.String("tv_show_id", id.String()),
			zap.String("kind", kind),
		)
		return fmt.Errorf("update tv show %s %s: %w", id.String(), kind, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tv show %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *tvRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tv_shows WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete tv show",
			zap.Error(err),
			zap.String("tv_show_id", id.String()),
		)
		return fmt.Errorf("delete tv show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tv show %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("TV show deleted", zap.String("tv_show_id", id.String()))
	return nil
}

func (r *tvRepository) FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	return findPendingImages(ctx, r.db, "tv_shows", []string{"poster_url", "backdrop_url"}, ossPrefix, limit)
}
