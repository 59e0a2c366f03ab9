package repository

import (
	"context"
	"fmt"
	"strings"

	"watch-list/internal/data/entity"
	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

// Image kinds accepted per resource type.
const (
	ImagePoster   = "poster"
	ImageBackdrop = "backdrop"
	ImageProfile  = "profile"
)

func imageColumn(resource entity.ResourceType, kind string) (string, error) {
	switch {
	case (resource == entity.ResourceMovie || resource == entity.ResourceTV) && kind == ImagePoster:
		return "poster_url", nil
	case (resource == entity.ResourceMovie || resource == entity.ResourceTV) && kind == ImageBackdrop:
		return "backdrop_url", nil
	case resource == entity.ResourceActor && kind == ImageProfile:
		return "profile_url", nil
	default:
		return "", fmt.Errorf("unsupported image kind %q for %s", kind, resource)
	}
}

// findPendingImages lists imported rows holding at least one image URL that
// does not yet live under ossPrefix.
func findPendingImages(ctx context.Context, db database.PgxIface, table string, columns []string, ossPrefix string, limit int) ([]uuid.UUID, error) {
	conditions := make([]string, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf("(%s IS NOT NULL AND %s NOT LIKE $1)", column, column))
	}

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE tmdb_id IS NOT NULL AND (%s)
		ORDER BY popularity DESC, id
		LIMIT $2`, table, strings.Join(conditions, " OR "))

	// LIMIT NULL means no limit
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, db, &ids, query, ossPrefix+"%", limitArg); err != nil {
		return nil, fmt.Errorf("find pending images in %s: %w", table, err)
	}
	return ids, nil
}
