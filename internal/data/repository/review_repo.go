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

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, kind entity.MediaKind, id uuid.UUID) (*entity.Review, error)
	FindByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) (int64, error)
	FindByUserAndMedia(ctx context.Context, kind entity.MediaKind, userID, mediaID uuid.UUID) (*entity.Review, error)
	Delete(ctx context.Context, kind entity.MediaKind, id uuid.UUID) error

	// Business queries
	GetStats(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) (*entity.ReviewStats, error)
	// FindRecent lists reviews newest first; an empty kind spans both tables.
	FindRecent(ctx context.Context, kind entity.MediaKind, limit, offset int) ([]*entity.Review, error)
	CountRecent(ctx context.Context, kind entity.MediaKind) (int64, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

// reviewSelect joins the review table of kind with its title and author.
func reviewSelect(kind entity.MediaKind) string {
	t := tablesFor(kind)
	return `
		SELECT r.id, '` + string(kind) + `' AS kind, r.` + t.fk + ` AS media_id,
		       m.` + t.title + ` AS media_title, r.user_id, u.username, r.rating,
		       r.content, r.created_at, r.updated_at
		FROM ` + t.reviews + ` r
		JOIN ` + t.media + ` m ON m.id = r.` + t.fk + `
		JOIN users u ON u.id = r.user_id`
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	t := tablesFor(review.Kind)
	query := `
		INSERT INTO ` + t.reviews + ` (id, ` + t.fk + `, user_id, rating, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.MediaID,
		review.UserID,
		review.Rating,
		review.Content,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review for %s %s by user %s: %w",
				review.Kind, review.MediaID.String(), review.UserID.String(), ErrDuplicate)
		}
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("kind", string(review.Kind)),
			zap.String("user_id", review.UserID.String()),
			zap.String("media_id", review.MediaID.String()),
		)
		return fmt.Errorf("create review for %s %s by user %s: %w",
			review.Kind, review.MediaID.String(), review.UserID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, kind entity.MediaKind, id uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	err := pgxscan.Get(ctx, r.db, &review, reviewSelect(kind)+` WHERE r.id = $1`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) FindByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	t := tablesFor(kind)
	query := reviewSelect(kind) + `
		WHERE r.` + t.fk + ` = $1
		ORDER BY r.created_at DESC, r.id
		LIMIT $2 OFFSET $3
	`

	var reviews []*entity.Review
	if err := pgxscan.Select(ctx, r.db, &reviews, query, mediaID, limit, offset); err != nil {
		r.log.Error("Failed to find reviews by media",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("media_id", mediaID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews of %s %s: %w", kind, mediaID.String(), err)
	}

	return reviews, nil
}

func (r *reviewRepository) CountByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) (int64, error) {
	t := tablesFor(kind)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+t.reviews+` WHERE `+t.fk+` = $1`, mediaID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews by media",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("media_id", mediaID.String()),
		)
		return 0, fmt.Errorf("count reviews of %s %s: %w", kind, mediaID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) FindByUserAndMedia(ctx context.Context, kind entity.MediaKind, userID, mediaID uuid.UUID) (*entity.Review, error) {
	t := tablesFor(kind)

	var review entity.Review
	err := pgxscan.Get(ctx, r.db, &review,
		reviewSelect(kind)+` WHERE r.user_id = $1 AND r.`+t.fk+` = $2 LIMIT 1`, userID, mediaID)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and media",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("user_id", userID.String()),
			zap.String("media_id", mediaID.String()),
		)
		return nil, fmt.Errorf("find review by user %s and %s %s: %w",
			userID.String(), kind, mediaID.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, kind entity.MediaKind, id uuid.UUID) error {
	t := tablesFor(kind)

	result, err := r.db.Exec(ctx, `DELETE FROM `+t.reviews+` WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Review deleted", zap.String("kind", string(kind)), zap.String("review_id", id.String()))
	return nil
}

func (r *reviewRepository) GetStats(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) (*entity.ReviewStats, error) {
	t := tablesFor(kind)
	query := `
		SELECT
			COALESCE(AVG(rating), 0)::float8 AS average_rating,
			COUNT(*) AS review_count
		FROM ` + t.reviews + `
		WHERE ` + t.fk + ` = $1
	`

	var stats entity.ReviewStats
	if err := pgxscan.Get(ctx, r.db, &stats, query, mediaID); err != nil {
		r.log.Error("Failed to get review stats",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("media_id", mediaID.String()),
		)
		return nil, fmt.Errorf("get review stats for %s %s: %w", kind, mediaID.String(), err)
	}

	return &stats, nil
}

func recentReviewsSource(kind entity.MediaKind) string {
	if kind.Valid() {
		return reviewSelect(kind)
	}
	return reviewSelect(entity.KindMovie) + ` UNION ALL ` + reviewSelect(entity.KindTV)
}

func (r *reviewRepository) FindRecent(ctx context.Context, kind entity.MediaKind, limit, offset int) ([]*entity.Review, error) {
	query := `SELECT * FROM (` + recentReviewsSource(kind) + `) reviews
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	var reviews []*entity.Review
	if err := pgxscan.Select(ctx, r.db, &reviews, query, limit, offset); err != nil {
		r.log.Error("Failed to find recent reviews",
			zap.Error(err),
			zap.String("kind", string(kind)),
		)
		return nil, fmt.Errorf("find recent reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) CountRecent(ctx context.Context, kind entity.MediaKind) (int64, error) {
	query := `SELECT (SELECT COUNT(*) FROM movie_reviews) + (SELECT COUNT(*) FROM tv_reviews)`
	if kind.Valid() {
		query = `SELECT COUNT(*) FROM ` + tablesFor(kind).reviews
	}

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews", zap.Error(err), zap.String("kind", string(kind)))
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return count, nil
}
