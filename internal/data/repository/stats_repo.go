package repository

import (
	"context"
	"fmt"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

type StatsRepository interface {
	Dashboard(ctx context.Context, since time.Time) (*entity.DashboardStats, error)
	// Genres lists every distinct genre across movies and tv shows.
	Genres(ctx context.Context) ([]string, error)
}

type statsRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStatsRepository(db database.PgxIface, log *zap.Logger) StatsRepository {
	return &statsRepository{
		db:  db,
		log: log.With(zap.String("repository", "stats")),
	}
}

func (r *statsRepository) Dashboard(ctx context.Context, since time.Time) (*entity.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM movies) AS movies,
			(SELECT COUNT(*) FROM tv_shows) AS tv_shows,
			(SELECT COUNT(*) FROM actors) AS actors,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM movie_reviews) + (SELECT COUNT(*) FROM tv_reviews) AS reviews,
			(SELECT COUNT(*) FROM operation_logs WHERE created_at >= $1) AS recent_logs,
			(SELECT COUNT(*) FROM operation_logs WHERE created_at >= $1 AND action = 'import') AS imported_last_day
	`

	var stats entity.DashboardStats
	if err := pgxscan.Get(ctx, r.db, &stats, query, since); err != nil {
		r.log.Error("Failed to load dashboard stats", zap.Error(err))
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}

	return &stats, nil
}

func (r *statsRepository) Genres(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT genre
		FROM (
			SELECT unnest(genres) AS genre FROM movies
			UNION
			SELECT unnest(genres) FROM tv_shows
		) g
		WHERE genre <> ''
		ORDER BY genre
	`

	var genres []string
	if err := pgxscan.Select(ctx, r.db, &genres, query); err != nil {
		r.log.Error("Failed to list genres", zap.Error(err))
		return nil, fmt.Errorf("list genres: %w", err)
	}

	return genres, nil
}
