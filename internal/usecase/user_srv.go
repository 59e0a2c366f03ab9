package usecase

import (
	"context"
	"fmt"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"

	"go.uber.org/zap"
)

type UserService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	UpdateRole(ctx context.Context, actorID, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	oplog    OperationLogService
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, oplog OperationLogService, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		oplog:    oplog,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, response.UserToResponse(user))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (us *userService) UpdateRole(ctx context.Context, actorID, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	role := entity.UserRole(req.Role)
	if actorID == id.String() && role != entity.RoleAdmin {
		return nil, fmt.Errorf("admins cannot demote themselves: %w", ErrForbidden)
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	previous := user.Role
	if previous != role {
		if err := us.userRepo.UpdateRole(ctx, id, role); err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		user.Role = role

		us.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionRoleChange, entity.ResourceUser, &user.ID, user.Username,
			map[string]any{"from": string(previous), "to": string(role)})

		us.log.Info("User role changed",
			zap.String("user_id", userID),
			zap.String("from", string(previous)),
			zap.String("to", string(role)),
		)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, actorID, userID string) error {
	id, err := parseID(userID, "user")
	if err != nil {
		return err
	}

	if actorID == id.String() {
		return fmt.Errorf("admins cannot delete themselves: %w", ErrForbidden)
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	us.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceUser, &user.ID, user.Username,
		map[string]any{"email": user.Email})

	us.log.Info("User deleted", zap.String("user_id", userID))
	return nil
}
