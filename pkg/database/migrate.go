package database

import (
	"context"
	"database/sql"
	"fmt"

	"watch-list/pkg/utils"

	"watch-list/internal/data/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Go migrations register themselves on import; goose still lists their
// source files, which the migrations package embeds.
const migrationsDir = "."

func openMigrationDB(dsn string) (*sql.DB, error) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}

	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	return sqlDB, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, config utils.DatabaseConfig) error {
	return MigrateDSN(ctx, config.DSN(), 0)
}

// MigrateDSN migrates the database behind dsn up to version, or to the
// latest one when version is 0.
func MigrateDSN(ctx context.Context, dsn string, version int64) error {
	sqlDB, err := openMigrationDB(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if version > 0 {
		return goose.UpToContext(ctx, sqlDB, migrationsDir, version)
	}
	return goose.UpContext(ctx, sqlDB, migrationsDir)
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, config utils.DatabaseConfig) error {
	sqlDB, err := openMigrationDB(config.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.DownContext(ctx, sqlDB, migrationsDir)
}

// MigrationStatus prints the applied state of every migration through goose's logger.
func MigrationStatus(ctx context.Context, config utils.DatabaseConfig) error {
	sqlDB, err := openMigrationDB(config.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.StatusContext(ctx, sqlDB, migrationsDir)
}
