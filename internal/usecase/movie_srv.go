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

type MovieService interface {
	GetMovies(ctx context.Context, req *request.MediaListRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieDetailResponse, error)

	// Admin
	UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error)
	DeleteMovie(ctx context.Context, movieID string) error
}

type movieService struct {
	repo   *repository.Repository
	images ImageService
	oplog  OperationLogService
	log    *zap.Logger
}

func NewMovieService(
	repo *repository.Repository,
	images ImageService,
	oplog OperationLogService,
	log *zap.Logger,
) MovieService {
	return &movieService{
		repo:   repo,
		images: images,
		oplog:  oplog,
		log:    log.With(zap.String("service", "movie")),
	}
}

func mediaFilter(req *request.MediaListRequest) repository.MediaFilter {
	return repository.MediaFilter{Genre: req.Genre, Year: req.Year, Sort: req.Sort}
}

func (s *movieService) GetMovies(ctx context.Context, req *request.MediaListRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := mediaFilter(req)
	movies, err := s.repo.Movie.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	total, err := s.repo.Movie.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	return response.NewPaginatedResponse(response.MoviesToResponse(movies), req.Page, req.Limit(), total), nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieDetailResponse, error) {
	id, err := parseID(movieID, "movie")
	if err != nil {
		return nil, err
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}

	cast, err := s.repo.Cast.FindByMedia(ctx, entity.KindMovie, id)
	if err != nil {
		return nil, fmt.Errorf("get movie cast: %w", err)
	}

	stats, err := s.repo.Review.GetStats(ctx, entity.KindMovie, id)
	if err != nil {
		return nil, fmt.Errorf("get movie review stats: %w", err)
	}

	return &response.MovieDetailResponse{
		MovieResponse: response.MovieToResponse(movie),
		Cast:          response.CastToResponse(cast),
		Reviews:       response.StatsToResponse(stats),
	}, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID(movieID, "movie")
	if err != nil {
		return nil, err
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}

	// Apply only the fields that were sent
	var changed []string
	if req.Title != nil {
		movie.Title = *req.Title
		changed = append(changed, "title")
	}
	if req.Overview != nil {
		movie.Overview = req.Overview
		changed = append(changed, "overview")
	}
	if req.Tagline != nil {
		movie.Tagline = req.Tagline
		changed = append(changed, "tagline")
	}
	if req.ReleaseDate != nil {
		movie.ReleaseDate = parseOptionalDate(*req.ReleaseDate)
		changed = append(changed, "release_date")
	}
	if req.Runtime != nil {
		movie.Runtime = req.Runtime
		changed = append(changed, "runtime")
	}
	if req.Status != nil {
		movie.Status = req.Status
		changed = append(changed, "status")
	}
	if req.Genres != nil {
		movie.Genres = req.Genres
		changed = append(changed, "genres")
	}

	if len(changed) == 0 {
		resp := response.MovieToResponse(movie)
		return &resp, nil
	}

	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	movie.UpdatedAt = time.Now()

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionUpdate, entity.ResourceMovie, &movie.ID, movie.Title,
		map[string]any{"fields": changed})

	s.log.Info("Movie updated", zap.String("movie_id", movieID), zap.Strings("fields", changed))

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, movieID string) error {
	id, err := parseID(movieID, "movie")
	if err != nil {
		return err
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return fmt.Errorf("movie %s: %w", movieID, ErrNotFound)
	}

	// Cast rows and reviews go with the movie through ON DELETE CASCADE
	if err := s.repo.Movie.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	s.images.RemoveObjects(ctx, movie.PosterURL, movie.BackdropURL)

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceMovie, &movie.ID, movie.Title,
		map[string]any{"tmdb_id": movie.TMDbID})

	s.log.Info("Movie deleted", zap.String("movie_id", movieID), zap.String("title", movie.Title))
	return nil
}

// parseOptionalDate reads a validated YYYY-MM-DD value; empty clears it.
func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}
