package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/migrations"
	"watch-list/pkg/database"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OperationLogFilter narrows the admin log listing. Empty fields match all.
type OperationLogFilter struct {
	Action       string
	ResourceType string
	UserID       *uuid.UUID
	Query        string
}

type OperationLogRepository interface {
	Create(ctx context.Context, log *entity.OperationLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.OperationLog, error)
	FindAll(ctx context.Context, filter OperationLogFilter, limit, offset int) ([]*entity.OperationLog, error)
	CountAll(ctx context.Context, filter OperationLogFilter) (int64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	// BackfillSnapshots fills empty resource names and usernames from rows
	// that still exist, returning how many log rows were touched.
	BackfillSnapshots(ctx context.Context) (int64, error)
}

type operationLogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOperationLogRepository(db database.PgxIface, log *zap.Logger) OperationLogRepository {
	return &operationLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "operation_log")),
	}
}

const operationLogColumns = `id, user_id, username, action, resource_type, resource_id,
	resource_name, details, ip_address, created_at`

func (r *operationLogRepository) Create(ctx context.Context, entry *entity.OperationLog) error {
	query := `
		INSERT INTO operation_logs (` + operationLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Username,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		entry.ResourceName,
		entry.Details,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create operation log",
			zap.Error(err),
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return fmt.Errorf("create operation log: %w", err)
	}

	return nil
}

func (r *operationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.OperationLog, error) {
	var entry entity.OperationLog
	err := pgxscan.Get(ctx, r.db, &entry, `SELECT `+operationLogColumns+` FROM operation_logs WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find operation log", zap.Error(err), zap.String("log_id", id.String()))
		return nil, fmt.Errorf("find operation log %s: %w", id.String(), err)
	}

	return &entry, nil
}

func buildOperationLogWhere(filter OperationLogFilter) (string, []any) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(" WHERE 1=1")
	args := []any{}
	argCount := 1

	if filter.Action != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND action = $%d", argCount))
		args = append(args, filter.Action)
		argCount++
	}
	if filter.ResourceType != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND resource_type = $%d", argCount))
		args = append(args, filter.ResourceType)
		argCount++
	}
	if filter.UserID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND resource_name ILIKE $%d", argCount))
		args = append(args, likePattern(filter.Query))
	}

	return queryBuilder.String(), args
}

func (r *operationLogRepository) FindAll(ctx context.Context, filter OperationLogFilter, limit, offset int) ([]*entity.OperationLog, error) {
	where, args := buildOperationLogWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM operation_logs%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		operationLogColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var entries []*entity.OperationLog
	if err := pgxscan.Select(ctx, r.db, &entries, query, args...); err != nil {
		r.log.Error("Failed to list operation logs",
			zap.Error(err),
			zap.String("action", filter.Action),
			zap.String("resource_type", filter.ResourceType),
		)
		return nil, fmt.Errorf("list operation logs: %w", err)
	}

	return entries, nil
}

func (r *operationLogRepository) CountAll(ctx context.Context, filter OperationLogFilter) (int64, error) {
	where, args := buildOperationLogWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM operation_logs`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count operation logs", zap.Error(err))
		return 0, fmt.Errorf("count operation logs: %w", err)
	}

	return total, nil
}

func (r *operationLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM operation_logs WHERE created_at < $1`, before)
	if err != nil {
		r.log.Error("Failed to prune operation logs", zap.Error(err), zap.Time("before", before))
		return 0, fmt.Errorf("prune operation logs: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *operationLogRepository) BackfillSnapshots(ctx context.Context) (int64, error) {
	var touched int64
	for _, stmt := range []string{migrations.BackfillResourceNameSQL, migrations.BackfillUsernameSQL} {
		result, err := r.db.Exec(ctx, stmt)
		if err != nil {
			r.log.Error("Failed to backfill operation logs", zap.Error(err))
			return touched, fmt.Errorf("backfill operation logs: %w", err)
		}
		touched += result.RowsAffected()
	}

	return touched, nil
}
