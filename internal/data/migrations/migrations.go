// Package migrations holds the goose Go migrations for the watch-list schema.
// Each migration opens gorm on the goose transaction so table definitions stay
// declarative while goose owns versioning.
package migrations

import (
	"database/sql"
	"embed"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// FS exposes the migration sources so goose can list them at runtime.
//
//go:embed 0*.go
var FS embed.FS

func openGorm(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}
