package usecase

import (
	"context"
	"fmt"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"

	"go.uber.org/zap"
)

type TVService interface {
	GetShows(ctx context.Context, req *request.MediaListRequest) (*response.PaginatedResponse[response.TVShowResponse], error)
	GetShowByID(ctx context.Context, showID string) (*response.TVShowDetailResponse, error)

	// Admin
	UpdateShow(ctx context.Context, showID string, req *request.TVUpdateRequest) (*response.TVShowResponse, error)
	DeleteShow(ctx context.Context, showID string) error
}

type tvService struct {
	repo   *repository.Repository
	images ImageService
	oplog  OperationLogService
	log    *zap.Logger
}

func NewTVService(
	repo *repository.Repository,
	images ImageService,
	oplog OperationLogService,
	log *zap.Logger,
) TVService {
	return &tvService{
		repo:   repo,
		images: images,
		oplog:  oplog,
		log:    log.With(zap.String("service", "tv")),
	}
}

func (s *tvService) GetShows(ctx context.Context, req *request.MediaListRequest) (*response.PaginatedResponse[response.TVShowResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := mediaFilter(req)
	shows, err := s.repo.TV.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list tv shows: %w", err)
	}

	total, err := s.repo.TV.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count tv shows: %w", err)
	}

	return response.NewPaginatedResponse(response.TVShowsToResponse(shows), req.Page, req.Limit(), total), nil
}

func (s *tvService) GetShowByID(ctx context.Context, showID string) (*response.TVShowDetailResponse, error) {
	id, err := parseID(showID, "tv show")
	if err != nil {
		return nil, err
	}

	show, err := s.repo.TV.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tv show: %w", err)
	}
	if show == nil {
		return nil, fmt.Errorf("tv show %s: %w", showID, ErrNotFound)
	}

	cast, err := s.repo.Cast.FindByMedia(ctx, entity.KindTV, id)
	if err != nil {
		return nil, fmt.Errorf("get tv cast: %w", err)
	}

	stats, err := s.repo.Review.GetStats(ctx, entity.KindTV, id)
	if err != nil {
		return nil, fmt.Errorf("get tv review stats: %w", err)
	}

	return &response.TVShowDetailResponse{
		TVShowResponse: response.TVShowToResponse(show),
		Cast:           response.CastToResponse(cast),
		Reviews:        response.StatsToResponse(stats),
	}, nil
}

func (s *tvService) UpdateShow(ctx context.Context, showID string, req *request.TVUpdateRequest) (*response.TVShowResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID(showID, "tv show")
	if err != nil {
		return nil, err
	}

	show, err := s.repo.TV.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tv show: %w", err)
	}
	if show == nil {
		return nil, fmt.Errorf("tv show %s: %w", showID, ErrNotFound)
	}

	var changed []string
	if req.Name != nil {
		show.Name = *req.Name
		changed = append(changed, "name")
	}
	if req.Overview != nil {
		show.Overview = req.Overview
		changed = append(changed, "overview")
	}
	if req.FirstAirDate != nil {
		show.FirstAirDate = parseOptionalDate(*req.FirstAirDate)
		changed = append(changed, "first_air_date")
	}
	if req.LastAirDate != nil {
		show.LastAirDate = parseOptionalDate(*req.LastAirDate)
		changed = append(changed, "last_air_date")
	}
	if req.NumberOfSeasons != nil {
		show.NumberOfSeasons = req.NumberOfSeasons
		changed = append(changed, "number_of_seasons")
	}
	if req.NumberOfEpisodes != nil {
		show.NumberOfEpisodes = req.NumberOfEpisodes
		changed = append(changed, "number_of_episodes")
	}
	if req.Status != nil {
		show.Status = req.Status
		changed = append(changed, "status")
	}
	if req.Genres != nil {
		show.Genres = req.Genres
		changed = append(changed, "genres")
	}

	if len(changed) == 0 {
		resp := response.TVShowToResponse(show)
		return &resp, nil
	}

	if err := s.repo.TV.Update(ctx, show); err != nil {
		return nil, fmt.Errorf("update tv show: %w", err)
	}
	show.UpdatedAt = time.Now()

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionUpdate, entity.ResourceTV, &show.ID, show.Name,
		map[string]any{"fields": changed})

	s.log.Info("TV show updated", zap.String("tv_show_id", showID), zap.Strings("fields", changed))

	resp := response.TVShowToResponse(show)
	return &resp, nil
}

func (s *tvService) DeleteShow(ctx context.Context, showID string) error {
	id, err := parseID(showID, "tv show")
	if err != nil {
		return err
	}

	show, err := s.repo.TV.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get tv show: %w", err)
	}
	if show == nil {
		return fmt.Errorf("tv show %s: %w", showID, ErrNotFound)
	}

	if err := s.repo.TV.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tv show: %w", err)
	}

	s.images.RemoveObjects(ctx, show.PosterURL, show.BackdropURL)

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceTV, &show.ID, show.Name,
		map[string]any{"tmdb_id": show.TMDbID})

	s.log.Info("TV show deleted", zap.String("tv_show_id", showID), zap.String("name", show.Name))
	return nil
}
