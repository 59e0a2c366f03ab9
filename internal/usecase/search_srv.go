package usecase

import (
	"context"
	"fmt"
	"strings"

	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"

	"go.uber.org/zap"
)

const homeSectionSize = 12

type SearchService interface {
	// Search returns a SearchAllResponse for type "all" and a paginated
	// list of the requested type otherwise.
	Search(ctx context.Context, req *request.SearchRequest) (any, error)
	Genres(ctx context.Context) ([]string, error)
	Home(ctx context.Context) (*response.HomeResponse, error)
}

type searchService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSearchService(repo *repository.Repository, log *zap.Logger) SearchService {
	return &searchService{
		repo: repo,
		log:  log.With(zap.String("service", "search")),
	}
}

func (s *searchService) Search(ctx context.Context, req *request.SearchRequest) (any, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := validate(req); err != nil {
		return nil, err
	}

	limit, offset := req.Limit(), req.Offset()

	switch req.Type {
	case "movie":
		movies, err := s.repo.Movie.Search(ctx, req.Query, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("search movies: %w", err)
		}
		total, err := s.repo.Movie.CountSearch(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("count movie matches: %w", err)
		}
		return response.NewPaginatedResponse(response.MoviesToResponse(movies), req.Page, limit, total), nil

	case "tv":
		shows, err := s.repo.TV.Search(ctx, req.Query, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("search tv shows: %w", err)
		}
		total, err := s.repo.TV.CountSearch(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("count tv matches: %w", err)
		}
		return response.NewPaginatedResponse(response.TVShowsToResponse(shows), req.Page, limit, total), nil

	case "actor":
		actors, err := s.repo.Actor.Search(ctx, req.Query, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("search actors: %w", err)
		}
		total, err := s.repo.Actor.CountSearch(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("count actor matches: %w", err)
		}
		return response.NewPaginatedResponse(response.ActorsToResponse(actors), req.Page, limit, total), nil
	}

	movies, err := s.repo.Movie.Search(ctx, req.Query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	shows, err := s.repo.TV.Search(ctx, req.Query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search tv shows: %w", err)
	}
	actors, err := s.repo.Actor.Search(ctx, req.Query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search actors: %w", err)
	}

	return &response.SearchAllResponse{
		Movies:  response.MoviesToResponse(movies),
		TVShows: response.TVShowsToResponse(shows),
		Actors:  response.ActorsToResponse(actors),
	}, nil
}

func (s *searchService) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.repo.Stats.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}

func (s *searchService) Home(ctx context.Context) (*response.HomeResponse, error) {
	trending := repository.MediaFilter{Sort: repository.SortPopularity}
	latest := repository.MediaFilter{Sort: repository.SortCreatedAt}

	trendingMovies, err := s.repo.Movie.FindAll(ctx, trending, homeSectionSize, 0)
	if err != nil {
		return nil, fmt.Errorf("trending movies: %w", err)
	}
	trendingTV, err := s.repo.TV.FindAll(ctx, trending, homeSectionSize, 0)
	if err != nil {
		return nil, fmt.Errorf("trending tv shows: %w", err)
	}
	latestMovies, err := s.repo.Movie.FindAll(ctx, latest, homeSectionSize, 0)
	if err != nil {
		return nil, fmt.Errorf("latest movies: %w", err)
	}
	latestTV, err := s.repo.TV.FindAll(ctx, latest, homeSectionSize, 0)
	if err != nil {
		return nil, fmt.Errorf("latest tv shows: %w", err)
	}

	return &response.HomeResponse{
		TrendingMovies: response.MoviesToResponse(trendingMovies),
		TrendingTV:     response.TVShowsToResponse(trendingTV),
		LatestMovies:   response.MoviesToResponse(latestMovies),
		LatestTV:       response.TVShowsToResponse(latestTV),
	}, nil
}
