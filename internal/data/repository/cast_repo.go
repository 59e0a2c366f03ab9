package repository

import (
	"context"
	"fmt"

	"watch-list/internal/data/entity"
	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CastRepository interface {
	// Replace swaps the whole cast of a movie or tv show in one transaction.
	Replace(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID, entries []entity.CastEntry) error
	FindByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) ([]*entity.CastMember, error)
	FindCredits(ctx context.Context, kind entity.MediaKind, actorID uuid.UUID) ([]*entity.Credit, error)
}

type castRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCastRepository(db database.PgxIface, log *zap.Logger) CastRepository {
	return &castRepository{
		db:  db,
		log: log.With(zap.String("repository", "cast")),
	}
}

func (r *castRepository) Replace(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID, entries []entity.CastEntry) (err error) {
	t := tablesFor(kind)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cast transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM `+t.casts+` WHERE `+t.fk+` = $1`, mediaID); err != nil {
		r.log.Error("Failed to clear cast",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("media_id", mediaID.String()),
		)
		return fmt.Errorf("clear %s: %w", t.casts, err)
	}

	insert := `INSERT INTO ` + t.casts + ` (id, ` + t.fk + `, actor_id, character, cast_order)
		VALUES ($1, $2, $3, $4, $5)`
	if kind == entity.KindMovie {
		insert += ` ON CONFLICT (movie_id, actor_id, character) DO NOTHING`
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		id := entry.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(insert, id, mediaID, entry.ActorID, entry.Character, entry.CastOrder)
	}

	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			r.log.Error("Failed to insert cast",
				zap.Error(err),
				zap.String("kind", string(kind)),
				zap.String("media_id", mediaID.String()),
				zap.Int("count", batch.Len()),
			)
			return fmt.Errorf("insert %s: %w", t.casts, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cast transaction: %w", err)
	}

	r.log.Debug("Cast replaced",
		zap.String("kind", string(kind)),
		zap.String("media_id", mediaID.String()),
		zap.Int("count", len(entries)),
	)
	return nil
}

func (r *castRepository) FindByMedia(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID) ([]*entity.CastMember, error) {
	t := tablesFor(kind)
	query := `
		SELECT a.id AS actor_id, a.name, a.profile_url, c.character, c.cast_order
		FROM ` + t.casts + ` c
		JOIN actors a ON a.id = c.actor_id
		WHERE c.` + t.fk + ` = $1
		ORDER BY c.cast_order, a.name
	`

	var cast []*entity.CastMember
	if err := pgxscan.Select(ctx, r.db, &cast, query, mediaID); err != nil {
		r.log.Error("Failed to find cast",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("media_id", mediaID.String()),
		)
		return nil, fmt.Errorf("find %s: %w", t.casts, err)
	}

	return cast, nil
}

func (r *castRepository) FindCredits(ctx context.Context, kind entity.MediaKind, actorID uuid.UUID) ([]*entity.Credit, error) {
	t := tablesFor(kind)
	query := `
		SELECT m.id AS media_id, m.` + t.title + ` AS title, m.poster_url, c.character, m.` + t.date + ` AS date
		FROM ` + t.casts + ` c
		JOIN ` + t.media + ` m ON m.id = c.` + t.fk + `
		WHERE c.actor_id = $1
		ORDER BY m.` + t.date + ` DESC NULLS LAST, m.id
	`

	var credits []*entity.Credit
	if err := pgxscan.Select(ctx, r.db, &credits, query, actorID); err != nil {
		r.log.Error("Failed to find credits",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("actor_id", actorID.String()),
		)
		return nil, fmt.Errorf("find %s credits: %w", kind, err)
	}

	return credits, nil
}
