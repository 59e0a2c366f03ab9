package usecase

import (
	"context"
	"fmt"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identifies who performed an operation.
type Actor struct {
	UserID   *uuid.UUID
	Username string
	IP       string
}

// SystemActor is recorded for CLI and batch operations.
var SystemActor = Actor{Username: "system"}

// ActorFromContext reads the authenticated user and client IP set by the
// Auth and ClientIP middleware, falling back to SystemActor.
func ActorFromContext(ctx context.Context) Actor {
	actor := SystemActor
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		actor.UserID = &id
		actor.Username, _ = utils.GetUsernameFromContext(ctx)
	}
	actor.IP, _ = utils.GetClientIPFromContext(ctx)
	return actor
}

type OperationLogService interface {
	// Record never fails the caller; write errors are only logged.
	Record(ctx context.Context, actor Actor, action entity.OperationAction, resourceType entity.ResourceType,
		resourceID *uuid.UUID, resourceName string, details map[string]any)
	List(ctx context.Context, req *request.OperationLogListRequest) (*response.PaginatedResponse[response.OperationLogResponse], error)
	Get(ctx context.Context, id string) (*response.OperationLogResponse, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Backfill(ctx context.Context) (int64, error)
}

type operationLogService struct {
	repo repository.OperationLogRepository
	log  *zap.Logger
}

func NewOperationLogService(repo repository.OperationLogRepository, log *zap.Logger) OperationLogService {
	return &operationLogService{
		repo: repo,
		log:  log.With(zap.String("service", "operation_log")),
	}
}

func (s *operationLogService) Record(
	ctx context.Context,
	actor Actor,
	action entity.OperationAction,
	resourceType entity.ResourceType,
	resourceID *uuid.UUID,
	resourceName string,
	details map[string]any,
) {
	entry := &entity.OperationLog{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:       actor.UserID,
		Username:     actor.Username,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: utils.StringPtr(resourceName),
		Details:      details,
		IPAddress:    utils.StringPtr(actor.IP),
	}

	// detached so a cancelled request still leaves its audit row
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.log.Warn("Failed to record operation log",
			zap.Error(err),
			zap.String("action", string(action)),
			zap.String("resource_type", string(resourceType)),
			zap.String("resource_name", resourceName),
		)
	}
}

func (s *operationLogService) List(ctx context.Context, req *request.OperationLogListRequest) (*response.PaginatedResponse[response.OperationLogResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := repository.OperationLogFilter{
		Action:       req.Action,
		ResourceType: req.ResourceType,
		Query:        req.Query,
	}
	if req.UserID != "" {
		userID, err := parseID(req.UserID, "user")
		if err != nil {
			return nil, err
		}
		filter.UserID = &userID
	}

	entries, err := s.repo.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list operation logs: %w", err)
	}

	total, err := s.repo.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count operation logs: %w", err)
	}

	data := make([]response.OperationLogResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, response.OperationLogToResponse(entry))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *operationLogService) Get(ctx context.Context, id string) (*response.OperationLogResponse, error) {
	logID, err := parseID(id, "operation log")
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("get operation log: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("operation log %s: %w", id, ErrNotFound)
	}

	resp := response.OperationLogToResponse(entry)
	return &resp, nil
}

func (s *operationLogService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention must be positive: %w", ErrInvalidInput)
	}

	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.log.Info("Operation logs pruned", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	return deleted, nil
}

func (s *operationLogService) Backfill(ctx context.Context) (int64, error) {
	touched, err := s.repo.BackfillSnapshots(ctx)
	if err != nil {
		return touched, err
	}

	s.log.Info("Operation log snapshots back-filled", zap.Int64("rows", touched))
	return touched, nil
}
