package repository

import (
	"context"
	"fmt"

	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

// BackupTables is the dump order: parents before children.
var BackupTables = []string{
	"users",
	"movies",
	"tv_shows",
	"actors",
	"movie_casts",
	"tv_casts",
	"movie_reviews",
	"tv_reviews",
	"operation_logs",
}

type HousekeepingRepository interface {
	// DumpTable streams every row of table as one JSON document per call.
	DumpTable(ctx context.Context, table string, fn func(row []byte) error) (int64, error)
	// ReferencedImageURLs lists every poster, backdrop and profile URL in use.
	ReferencedImageURLs(ctx context.Context) ([]string, error)
}

type housekeepingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHousekeepingRepository(db database.PgxIface, log *zap.Logger) HousekeepingRepository {
	return &housekeepingRepository{
		db:  db,
		log: log.With(zap.String("repository", "housekeeping")),
	}
}

func isBackupTable(table string) bool {
	for _, t := range BackupTables {
		if t == table {
			return true
		}
	}
	return false
}

func (r *housekeepingRepository) DumpTable(ctx context.Context, table string, fn func(row []byte) error) (int64, error) {
	if !isBackupTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	rows, err := r.db.Query(ctx, `SELECT row_to_json(t)::text FROM `+table+` t ORDER BY t.id`)
	if err != nil {
		r.log.Error("Failed to dump table", zap.Error(err), zap.String("table", table))
		return 0, fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return count, fmt.Errorf("scan %s row: %w", table, err)
		}
		if err := fn([]byte(doc)); err != nil {
			return count, err
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate %s rows: %w", table, err)
	}

	return count, nil
}

func (r *housekeepingRepository) ReferencedImageURLs(ctx context.Context) ([]string, error) {
	query := `
		SELECT url FROM (
			SELECT poster_url AS url FROM movies
			UNION SELECT backdrop_url FROM movies
			UNION SELECT poster_url FROM tv_shows
			UNION SELECT backdrop_url FROM tv_shows
			UNION SELECT profile_url FROM actors
		) refs
		WHERE url IS NOT NULL
	`

	var urls []string
	if err := pgxscan.Select(ctx, r.db, &urls, query); err != nil {
		r.log.Error("Failed to list referenced image URLs", zap.Error(err))
		return nil, fmt.Errorf("list referenced image urls: %w", err)
	}

	return urls, nil
}
