package repository

import (
	"fmt"
	"strings"
)

// buildMediaListQuery renders the WHERE and ORDER BY parts shared by movie
// and tv listings. dateColumn is release_date or first_air_date.
func buildMediaListQuery(filter MediaFilter, dateColumn string) (where string, orderBy string, args []any) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(" WHERE 1=1")
	argCount := 1

	if filter.Genre != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND $%d = ANY(genres)", argCount))
		args = append(args, filter.Genre)
		argCount++
	}

	if filter.Year > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXTRACT(YEAR FROM %s) = $%d", dateColumn, argCount))
		args = append(args, filter.Year)
	}

	switch filter.Sort {
	case SortReleaseDate:
		orderBy = fmt.Sprintf(" ORDER BY %s DESC NULLS LAST, id", dateColumn)
	case SortVoteAverage:
		orderBy = " ORDER BY vote_average DESC, vote_count DESC, id"
	case SortCreatedAt:
		orderBy = " ORDER BY created_at DESC, id"
	default:
		orderBy = " ORDER BY popularity DESC, id"
	}

	return queryBuilder.String(), orderBy, args
}
