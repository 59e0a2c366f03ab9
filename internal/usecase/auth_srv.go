package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Me(ctx context.Context, userID string) (*response.UserResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwt      *utils.JWTManager
	oplog    OperationLogService
	log      *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwt *utils.JWTManager,
	oplog OperationLogService,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		jwt:      jwt,
		oplog:    oplog,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Email and username must be free
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existingUser != nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	}

	existingUser, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existingUser != nil {
		return nil, fmt.Errorf("username already taken: %w", ErrConflict)
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("process password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	// 4. Save user; the very first account bootstraps the admin role
	if err := s.userRepo.Register(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already taken: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Validate
	if err := validate(req); err != nil {
		return nil, err
	}

	identifier := strings.TrimSpace(req.Username)

	// 2. Find user by email, then by username
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(identifier))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		user, err = s.userRepo.FindByUsername(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
	}

	// 3. Unknown user and wrong password look the same to the caller
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Login rejected", zap.String("identifier", identifier))
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	resp, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	actor := ActorFromContext(ctx)
	actor.UserID = &user.ID
	actor.Username = user.Username
	s.oplog.Record(ctx, actor, entity.ActionLogin, entity.ResourceUser, &user.ID, user.Username, nil)

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return resp, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) issueToken(user *entity.User) (*response.AuthResponse, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		s.log.Error("Failed to generate token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &response.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      response.UserToResponse(user),
	}, nil
}
