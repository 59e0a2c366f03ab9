package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetReviews(ctx context.Context, kind entity.MediaKind, mediaID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	CreateReview(ctx context.Context, kind entity.MediaKind, mediaID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, kind entity.MediaKind, reviewID, userID string) error

	// Admin moderation
	GetRecentReviews(ctx context.Context, req *request.ReviewListRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
}

type reviewService struct {
	repo  *repository.Repository
	oplog OperationLogService
	log   *zap.Logger
}

func NewReviewService(repo *repository.Repository, oplog OperationLogService, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:  repo,
		oplog: oplog,
		log:   log.With(zap.String("service", "review")),
	}
}

func checkMediaKind(kind entity.MediaKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown media kind %q: %w", kind, ErrInvalidInput)
	}
	return nil
}

// mediaTitle returns the title of the reviewed movie or show, or
// ErrNotFound when it does not exist.
func (s *reviewService) mediaTitle(ctx context.Context, kind entity.MediaKind, id uuid.UUID) (string, error) {
	if kind == entity.KindTV {
		show, err := s.repo.TV.FindByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("get tv show: %w", err)
		}
		if show == nil {
			return "", fmt.Errorf("tv show %s: %w", id, ErrNotFound)
		}
		return show.Name, nil
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return "", fmt.Errorf("movie %s: %w", id, ErrNotFound)
	}
	return movie.Title, nil
}

func (s *reviewService) GetReviews(ctx context.Context, kind entity.MediaKind, mediaID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if err := checkMediaKind(kind); err != nil {
		return nil, err
	}
	id, err := parseID(mediaID, string(kind))
	if err != nil {
		return nil, err
	}
	if _, err := s.mediaTitle(ctx, kind, id); err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByMedia(ctx, kind, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	total, err := s.repo.Review.CountByMedia(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) CreateReview(ctx context.Context, kind entity.MediaKind, mediaID, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if err := checkMediaKind(kind); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID(mediaID, string(kind))
	if err != nil {
		return nil, err
	}
	userUUID, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	title, err := s.mediaTitle(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	// One review per user per title
	existing, err := s.repo.Review.FindByUserAndMedia(ctx, kind, userUUID, id)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("you have already reviewed this title: %w", ErrConflict)
	}

	now := time.Now()
	review := &entity.Review{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Kind:       kind,
		MediaID:    id,
		MediaTitle: title,
		UserID:     userUUID,
		Rating:     req.Rating,
		Content:    req.Content,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("you have already reviewed this title: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if user, err := s.repo.User.FindByID(ctx, userUUID); err == nil && user != nil {
		review.Username = user.Username
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("media_id", mediaID),
		zap.Int("rating", req.Rating),
	)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

// DeleteReview lets the author remove their own review. Anyone else must be
// an admin according to the users table, not the token.
func (s *reviewService) DeleteReview(ctx context.Context, kind entity.MediaKind, reviewID, userID string) error {
	if err := checkMediaKind(kind); err != nil {
		return err
	}
	id, err := parseID(reviewID, "review")
	if err != nil {
		return err
	}

	review, err := s.repo.Review.FindByID(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	owner := review.UserID.String() == userID
	if !owner {
		isAdmin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return fmt.Errorf("only the author or an admin can delete a review: %w", ErrForbidden)
		}
	}

	if err := s.repo.Review.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	// Moderation by an admin is audited; authors removing their own review are not
	if !owner {
		s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceReview, &review.ID, review.MediaTitle,
			map[string]any{"kind": string(kind), "author": review.Username, "rating": review.Rating})
	}

	return nil
}

func (s *reviewService) isAdmin(ctx context.Context, userID string) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	return user != nil && user.Role == entity.RoleAdmin, nil
}

func (s *reviewService) GetRecentReviews(ctx context.Context, req *request.ReviewListRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	kind := entity.MediaKind(req.Kind)
	reviews, err := s.repo.Review.FindRecent(ctx, kind, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}

	total, err := s.repo.Review.CountRecent(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}
