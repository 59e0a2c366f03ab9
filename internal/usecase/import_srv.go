package usecase

import (
	"context"
	"fmt"
	"strings"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/internal/tmdb"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCastLimit = 15

type ImportService interface {
	SearchTMDb(ctx context.Context, req *request.TMDbSearchRequest) (*response.TMDbSearchResponse, error)
	ImportMovie(ctx context.Context, req *request.ImportRequest) (*response.ImportResponse, error)
	ImportTV(ctx context.Context, req *request.ImportRequest) (*response.ImportResponse, error)
}

type importService struct {
	repo      *repository.Repository
	tmdb      TMDbClient
	images    ImageService
	oplog     OperationLogService
	castLimit int
	log       *zap.Logger
}

func NewImportService(
	repo *repository.Repository,
	tmdbClient TMDbClient,
	images ImageService,
	oplog OperationLogService,
	castLimit int,
	log *zap.Logger,
) ImportService {
	if castLimit <= 0 {
		castLimit = defaultCastLimit
	}

	return &importService{
		repo:      repo,
		tmdb:      tmdbClient,
		images:    images,
		oplog:     oplog,
		castLimit: castLimit,
		log:       log.With(zap.String("service", "import")),
	}
}

func (s *importService) ready() error {
	if s.tmdb == nil || !s.tmdb.Configured() {
		return fmt.Errorf("tmdb is not configured: %w", ErrUpstream)
	}
	return nil
}

func (s *importService) SearchTMDb(ctx context.Context, req *request.TMDbSearchRequest) (*response.TMDbSearchResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Page < 1 {
		req.Page = 1
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		page *tmdb.SearchPage
		err  error
	)
	if req.Type == "tv" {
		page, err = s.tmdb.SearchTV(ctx, req.Query, req.Page)
	} else {
		page, err = s.tmdb.SearchMovies(ctx, req.Query, req.Page)
	}
	if err != nil {
		return nil, upstreamError("search tmdb", err)
	}

	ids := make([]int64, 0, len(page.Results))
	for _, r := range page.Results {
		ids = append(ids, r.ID)
	}

	var local map[int64]uuid.UUID
	if req.Type == "tv" {
		local, err = s.repo.TV.FindByTMDbIDs(ctx, ids)
	} else {
		local, err = s.repo.Movie.FindByTMDbIDs(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("match imported titles: %w", err)
	}

	results := make([]response.TMDbSearchItem, 0, len(page.Results))
	for _, r := range page.Results {
		item := response.TMDbSearchItem{
			TMDbID:        r.ID,
			Title:         r.DisplayTitle(),
			OriginalTitle: r.OriginalTitle + r.OriginalName,
			Overview:      r.Overview,
			Date:          r.Date(),
			PosterURL:     s.tmdb.ImageURL(r.PosterPath),
			VoteAverage:   r.VoteAverage,
		}
		if id, ok := local[r.ID]; ok {
			localID := id.String()
			item.Imported = true
			item.LocalID = &localID
		}
		results = append(results, item)
	}

	return &response.TMDbSearchResponse{
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
		Results:      results,
	}, nil
}

func (s *importService) ImportMovie(ctx context.Context, req *request.ImportRequest) (*response.ImportResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	// 1. Fetch details with credits
	details, err := s.tmdb.GetMovie(ctx, req.TMDbID)
	if err != nil {
		return nil, upstreamError(fmt.Sprintf("fetch tmdb movie %d", req.TMDbID), err)
	}

	// 2. Upsert the movie by tmdb_id
	movie := s.movieFromTMDb(details)
	id, created, err := s.repo.Movie.Upsert(ctx, movie)
	if err != nil {
		return nil, fmt.Errorf("save movie: %w", err)
	}

	// 3. Actors and cast
	castCount, err := s.importCast(ctx, entity.KindMovie, id, details.Credits.Cast)
	if err != nil {
		return nil, err
	}

	resp := &response.ImportResponse{
		ID:        id.String(),
		Kind:      string(entity.KindMovie),
		TMDbID:    details.ID,
		Title:     details.Title,
		Created:   created,
		CastCount: castCount,
	}

	// 4. Optional image pipeline, best effort
	if req.WithImages {
		synced, _ := s.images.ApplyRemote(ctx, entity.ResourceMovie, id, map[string]string{
			repository.ImagePoster:   details.PosterPath,
			repository.ImageBackdrop: details.BackdropPath,
		})
		resp.Images = sortedKinds(synced)
	}

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionImport, entity.ResourceMovie, &id, details.Title,
		map[string]any{"tmdb_id": details.ID, "created": created, "cast_count": castCount, "images": resp.Images})

	s.log.Info("Movie imported",
		zap.Int64("tmdb_id", details.ID),
		zap.String("movie_id", id.String()),
		zap.Bool("created", created),
		zap.Int("cast", castCount),
	)

	return resp, nil
}

func (s *importService) ImportTV(ctx context.Context, req *request.ImportRequest) (*response.ImportResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	details, err := s.tmdb.GetTV(ctx, req.TMDbID)
	if err != nil {
		return nil, upstreamError(fmt.Sprintf("fetch tmdb tv show %d", req.TMDbID), err)
	}

	show := s.showFromTMDb(details)
	id, created, err := s.repo.TV.Upsert(ctx, show)
	if err != nil {
		return nil, fmt.Errorf("save tv show: %w", err)
	}

	castCount, err := s.importCast(ctx, entity.KindTV, id, details.Credits.Cast)
	if err != nil {
		return nil, err
	}

	resp := &response.ImportResponse{
		ID:        id.String(),
		Kind:      string(entity.KindTV),
		TMDbID:    details.ID,
		Title:     details.Name,
		Created:   created,
		CastCount: castCount,
	}

	if req.WithImages {
		synced, _ := s.images.ApplyRemote(ctx, entity.ResourceTV, id, map[string]string{
			repository.ImagePoster:   details.PosterPath,
			repository.ImageBackdrop: details.BackdropPath,
		})
		resp.Images = sortedKinds(synced)
	}

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionImport, entity.ResourceTV, &id, details.Name,
		map[string]any{"tmdb_id": details.ID, "created": created, "cast_count": castCount, "images": resp.Images})

	s.log.Info("TV show imported",
		zap.Int64("tmdb_id", details.ID),
		zap.String("tv_show_id", id.String()),
		zap.Bool("created", created),
		zap.Int("cast", castCount),
	)

	return resp, nil
}

// importCast upserts the first castLimit credits as actors and replaces the
// cast of the title with them.
func (s *importService) importCast(ctx context.Context, kind entity.MediaKind, mediaID uuid.UUID, credits []tmdb.CastCredit) (int, error) {
	if len(credits) > s.castLimit {
		credits = credits[:s.castLimit]
	}

	entries := make([]entity.CastEntry, 0, len(credits))
	for i, credit := range credits {
		tmdbID := credit.ID
		actorID, err := s.repo.Actor.Upsert(ctx, &entity.Actor{
			TMDbID:     &tmdbID,
			Name:       credit.Name,
			ProfileURL: s.tmdb.ImageURL(credit.ProfilePath),
			Popularity: credit.Popularity,
		})
		if err != nil {
			return 0, fmt.Errorf("save actor %q: %w", credit.Name, err)
		}

		order := credit.Order
		if order == 0 && i > 0 {
			order = i
		}
		entries = append(entries, entity.CastEntry{
			ID:        uuid.New(),
			MediaID:   mediaID,
			ActorID:   actorID,
			Character: credit.Character,
			CastOrder: order,
		})
	}

	if err := s.repo.Cast.Replace(ctx, kind, mediaID, entries); err != nil {
		return 0, fmt.Errorf("replace cast: %w", err)
	}
	return len(entries), nil
}

func (s *importService) movieFromTMDb(m *tmdb.Movie) *entity.Movie {
	tmdbID := m.ID
	movie := &entity.Movie{
		TMDbID:        &tmdbID,
		Title:         m.Title,
		OriginalTitle: utils.StringPtr(m.OriginalTitle),
		Overview:      utils.StringPtr(m.Overview),
		Tagline:       utils.StringPtr(m.Tagline),
		ReleaseDate:   tmdb.ParseDate(m.ReleaseDate),
		Status:        utils.StringPtr(m.Status),
		Genres:        tmdb.GenreNames(m.Genres),
		VoteAverage:   m.VoteAverage,
		VoteCount:     m.VoteCount,
		Popularity:    m.Popularity,
		PosterURL:     s.tmdb.ImageURL(m.PosterPath),
		BackdropURL:   s.tmdb.ImageURL(m.BackdropPath),
		IMDbID:        utils.StringPtr(m.IMDbID),
	}
	if m.Runtime > 0 {
		runtime := m.Runtime
		movie.Runtime = &runtime
	}
	return movie
}

func (s *importService) showFromTMDb(t *tmdb.TVShow) *entity.TVShow {
	tmdbID := t.ID
	show := &entity.TVShow{
		TMDbID:       &tmdbID,
		Name:         t.Name,
		OriginalName: utils.StringPtr(t.OriginalName),
		Overview:     utils.StringPtr(t.Overview),
		FirstAirDate: tmdb.ParseDate(t.FirstAirDate),
		LastAirDate:  tmdb.ParseDate(t.LastAirDate),
		Status:       utils.StringPtr(t.Status),
		Genres:       tmdb.GenreNames(t.Genres),
		VoteAverage:  t.VoteAverage,
		VoteCount:    t.VoteCount,
		Popularity:   t.Popularity,
		PosterURL:    s.tmdb.ImageURL(t.PosterPath),
		BackdropURL:  s.tmdb.ImageURL(t.BackdropPath),
	}
	if t.NumberOfSeasons > 0 {
		seasons := t.NumberOfSeasons
		show.NumberOfSeasons = &seasons
	}
	if t.NumberOfEpisodes > 0 {
		episodes := t.NumberOfEpisodes
		show.NumberOfEpisodes = &episodes
	}
	return show
}

func sortedKinds(synced map[string]string) []string {
	var kinds []string
	for _, kind := range []string{repository.ImagePoster, repository.ImageBackdrop, repository.ImageProfile} {
		if _, ok := synced[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
