package migrations

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upDenormalizeOperationLogs, downDenormalizeOperationLogs)
}

// operationLogSnapshot lists only the columns 00002 adds.
type operationLogSnapshot struct {
	Username     string     `gorm:"type:text;not null;default:''"`
	ResourceType string     `gorm:"type:text;not null;default:'';index"`
	ResourceID   *uuid.UUID `gorm:"type:uuid;index"`
	ResourceName *string    `gorm:"type:text"`
}

func (operationLogSnapshot) TableName() string { return "operation_logs" }

// BackfillResourceNameSQL and BackfillUsernameSQL fill snapshot columns from
// rows that still exist. The oplog backfill command reuses them, so both must
// stay idempotent.
const BackfillResourceNameSQL = `
UPDATE operation_logs ol
SET resource_name = src.name
FROM (
	SELECT id, 'movie' AS type, title AS name FROM movies
	UNION ALL SELECT id, 'tv', name FROM tv_shows
	UNION ALL SELECT id, 'actor', name FROM actors
	UNION ALL SELECT id, 'user', username FROM users
) src
WHERE ol.resource_id = src.id
  AND ol.resource_type = src.type
  AND (ol.resource_name IS NULL OR ol.resource_name = '')`

const BackfillUsernameSQL = `
UPDATE operation_logs ol
SET username = u.username
FROM users u
WHERE ol.user_id = u.id
  AND ol.username = '';
`

func upDenormalizeOperationLogs(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openGorm(tx)
	if err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	for _, column := range []string{"Username", "ResourceType", "ResourceID", "ResourceName"} {
		if m.HasColumn(&operationLogSnapshot{}, column) {
			continue
		}
		if err := m.AddColumn(&operationLogSnapshot{}, column); err != nil {
			return err
		}
	}

	steps := []string{
		`UPDATE operation_logs
		 SET resource_type = 'movie', resource_id = movie_id
		 WHERE movie_id IS NOT NULL AND resource_id IS NULL`,
		`UPDATE operation_logs
		 SET resource_type = 'tv', resource_id = tv_show_id
		 WHERE tv_show_id IS NOT NULL AND resource_id IS NULL`,
		`UPDATE operation_logs
		 SET resource_type = COALESCE(details->>'resource_type', '')
		 WHERE resource_type = ''`,
		BackfillResourceNameSQL,
		BackfillUsernameSQL,
		`ALTER TABLE operation_logs DROP CONSTRAINT IF EXISTS fk_operation_logs_user`,
		`ALTER TABLE operation_logs DROP COLUMN IF EXISTS movie_id`,
		`ALTER TABLE operation_logs DROP COLUMN IF EXISTS tv_show_id`,
		`CREATE INDEX IF NOT EXISTS idx_operation_logs_resource_name ON operation_logs (resource_name)`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func downDenormalizeOperationLogs(ctx context.Context, tx *sql.Tx) error {
	steps := []string{
		`ALTER TABLE operation_logs ADD COLUMN IF NOT EXISTS movie_id uuid REFERENCES movies(id) ON DELETE SET NULL`,
		`ALTER TABLE operation_logs ADD COLUMN IF NOT EXISTS tv_show_id uuid REFERENCES tv_shows(id) ON DELETE SET NULL`,
		`UPDATE operation_logs ol SET movie_id = ol.resource_id
		 FROM movies m WHERE ol.resource_type = 'movie' AND m.id = ol.resource_id`,
		`UPDATE operation_logs ol SET tv_show_id = ol.resource_id
		 FROM tv_shows t WHERE ol.resource_type = 'tv' AND t.id = ol.resource_id`,
		`UPDATE operation_logs SET user_id = NULL
		 WHERE user_id IS NOT NULL AND user_id NOT IN (SELECT id FROM users)`,
		`ALTER TABLE operation_logs ADD CONSTRAINT fk_operation_logs_user
		 FOREIGN KEY (user_id) REFERENCES users(id) ON UPDATE CASCADE ON DELETE SET NULL`,
		`DROP INDEX IF EXISTS idx_operation_logs_resource_name`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	gormDB, err := openGorm(tx)
	if err != nil {
		return err
	}
	m := gormDB.WithContext(ctx).Migrator()
	for _, column := range []string{"ResourceName", "ResourceID", "ResourceType", "Username"} {
		if err := m.DropColumn(&operationLogSnapshot{}, column); err != nil {
			return err
		}
	}
	return nil
}
