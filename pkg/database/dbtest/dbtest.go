// Package dbtest hands tests a scratch schema on the PostgreSQL server named
// by TEST_DATABASE_URL. Tests using it are skipped when the variable is unset.
package dbtest

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"watch-list/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// EnvURL must hold a postgres:// URL; each test gets its own schema on it.
const EnvURL = "TEST_DATABASE_URL"

// Schema creates an empty schema and returns a DSN whose search_path points
// at it. The schema is dropped when the test ends.
func Schema(t testing.TB) string {
	t.Helper()

	base := os.Getenv(EnvURL)
	if base == "" {
		t.Skipf("%s not set", EnvURL)
	}

	dsn, err := url.Parse(base)
	require.NoError(t, err)
	require.Contains(t, []string{"postgres", "postgresql"}, dsn.Scheme, "%s must be a postgres:// URL", EnvURL)

	schema := "wl_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	ident := pgx.Identifier{schema}.Sanitize()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, base)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "CREATE SCHEMA "+ident)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, base)
		if err != nil {
			t.Logf("drop schema %s: %v", schema, err)
			return
		}
		defer conn.Close(ctx)
		if _, err := conn.Exec(ctx, "DROP SCHEMA "+ident+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	query := dsn.Query()
	query.Set("search_path", schema)
	dsn.RawQuery = query.Encode()
	return dsn.String()
}

// Connect opens a pool on dsn that is closed when the test ends.
func Connect(t testing.TB, dsn string) database.PgxIface {
	t.Helper()

	db, err := database.Connect(context.Background(), dsn, 4)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// Migrated returns a pool on a fresh schema with every migration applied.
func Migrated(t testing.TB) database.PgxIface {
	t.Helper()

	dsn := Schema(t)
	require.NoError(t, database.MigrateDSN(context.Background(), dsn, 0))
	return Connect(t, dsn)
}
