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

type ActorRepository interface {
	Upsert(ctx context.Context, actor *entity.Actor) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Actor, error)
	Search(ctx context.Context, q string, limit, offset int) ([]*entity.Actor, error)
	CountSearch(ctx context.Context, q string) (int64, error)
	Update(ctx context.Context, actor *entity.Actor) error
	UpdateProfile(ctx context.Context, id uuid.UUID, url *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOrphans returns actors without any movie or tv cast row.
	FindOrphans(ctx context.Context) ([]*entity.Actor, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error)
}

type actorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewActorRepository(db database.PgxIface, log *zap.Logger) ActorRepository {
	return &actorRepository{
		db:  db,
		log: log.With(zap.String("repository", "actor")),
	}
}

const actorColumns = `id, tmdb_id, name, biography, birthday, place_of_birth, profile_url,
	popularity, created_at, updated_at`

func (r *actorRepository) Upsert(ctx context.Context, actor *entity.Actor) (uuid.UUID, error) {
	query := `
		INSERT INTO actors (` + actorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (tmdb_id) DO UPDATE SET
			name = EXCLUDED.name,
			biography = COALESCE(EXCLUDED.biography, actors.biography),
			birthday = COALESCE(EXCLUDED.birthday, actors.birthday),
			place_of_birth = COALESCE(EXCLUDED.place_of_birth, actors.place_of_birth),
			profile_url = COALESCE(actors.profile_url, EXCLUDED.profile_url),
			popularity = EXCLUDED.popularity,
			updated_at = NOW()
		RETURNING id
	`

	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		actor.ID,
		actor.TMDbID,
		actor.Name,
		actor.Biography,
		actor.Birthday,
		actor.PlaceOfBirth,
		actor.ProfileURL,
		actor.Popularity,
	).Scan(&id)
	if err != nil {
		r.log.Error("Failed to upsert actor",
			zap.Error(err),
			zap.Int64p("tmdb_id", actor.TMDbID),
			zap.String("name", actor.Name),
		)
		return uuid.Nil, fmt.Errorf("upsert actor %q: %w", actor.Name, err)
	}

	actor.ID = id
	return id, nil
}

func (r *actorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Actor, error) {
	var actor entity.Actor
	err := pgxscan.Get(ctx, r.db, &actor, `SELECT `+actorColumns+` FROM actors WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find actor by ID",
			zap.Error(err),
			zap.String("actor_id", id.String()),
		)
		return nil, fmt.Errorf("find actor %s: %w", id.String(), err)
	}

	return &actor, nil
}

func (r *actorRepository) Search(ctx context.Context, q string, limit, offset int) ([]*entity.Actor, error) {
	query := `
		SELECT ` + actorColumns + `
		FROM actors
		WHERE name ILIKE $1
		ORDER BY popularity DESC, id
		LIMIT $2 OFFSET $3
	`

	var actors []*entity.Actor
	if err := pgxscan.Select(ctx, r.db, &actors, query, likePattern(q), limit, offset); err != nil {
		r.log.Error("Failed to search actors", zap.Error(err), zap.String("q", q))
		return nil, fmt.Errorf("search actors: %w", err)
	}

	return actors, nil
}

func (r *actorRepository) CountSearch(ctx context.Context, q string) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM actors WHERE name ILIKE $1`, likePattern(q)).Scan(&total); err != nil {
		r.log.Error("Failed to count actor search", zap.Error(err), zap.String("q", q))
		return 0, fmt.Errorf("count actor search: %w", err)
	}

	return total, nil
}

func (r *actorRepository) Update(ctx context.Context, actor *entity.Actor) error {
	query := `
		UPDATE actors
		SET name = $2, biography = $3, birthday = $4, place_of_birth = $5,
		    popularity = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		actor.ID,
		actor.Name,
		actor.Biography,
		actor.Birthday,
		actor.PlaceOfBirth,
		actor.Popularity,
	)
	if err != nil {
		r.log.Error("Failed to update actor",
			zap.Error(err),
			zap.String("actor_id", actor.ID.String()),
		)
		return fmt.Errorf("update actor %s: %w", actor.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("actor %s: %w", actor.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *actorRepository) UpdateProfile(ctx context.Context, id uuid.UUID, url *string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE actors SET profile_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		r.log.Error("Failed to update actor profile",
			zap.Error(err),
			zap.String("actor_id", id.String()),
		)
		return fmt.Errorf("update actor %s profile: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("actor %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *actorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete actor",
			zap.Error(err),
			zap.String("actor_id", id.String()),
		)
		return fmt.Errorf("delete actor %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("actor %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Actor deleted", zap.String("actor_id", id.String()))
	return nil
}

func (r *actorRepository) FindOrphans(ctx context.Context) ([]*entity.Actor, error) {
	query := `
		SELECT ` + actorColumns + `
		FROM actors a
		WHERE NOT EXISTS (SELECT 1 FROM movie_casts mc WHERE mc.actor_id = a.id)
		  AND NOT EXISTS (SELECT 1 FROM tv_casts tc WHERE tc.actor_id = a.id)
		ORDER BY a.name
	`

	var actors []*entity.Actor
	if err := pgxscan.Select(ctx, r.db, &actors, query); err != nil {
		r.log.Error("Failed to find orphan actors", zap.Error(err))
		return nil, fmt.Errorf("find orphan actors: %w", err)
	}

	return actors, nil
}

// DeleteByIDs re-checks orphan status so actors cast since FindOrphans survive.
func (r *actorRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		DELETE FROM actors a
		WHERE a.id = ANY($1)
		  AND NOT EXISTS (SELECT 1 FROM movie_casts mc WHERE mc.actor_id = a.id)
		  AND NOT EXISTS (SELECT 1 FROM tv_casts tc WHERE tc.actor_id = a.id)
	`

	result, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to delete actors", zap.Error(err), zap.Int("count", len(ids)))
		return 0, fmt.Errorf("delete actors: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *actorRepository) FindPendingImages(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	return findPendingImages(ctx, r.db, "actors", []string{"profile_url"}, ossPrefix, limit)
}
