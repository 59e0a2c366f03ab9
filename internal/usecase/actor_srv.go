package usecase

import (
	"context"
	"fmt"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/internal/tmdb"
	"watch-list/pkg/utils"

	"go.uber.org/zap"
)

type ActorService interface {
	GetActor(ctx context.Context, actorID string) (*response.ActorDetailResponse, error)

	// Admin
	UpdateActor(ctx context.Context, actorID string, req *request.ActorUpdateRequest) (*response.ActorResponse, error)
	DeleteActor(ctx context.Context, actorID string) error
	RefreshActor(ctx context.Context, actorID string) (*response.ActorResponse, error)
}

type actorService struct {
	repo   *repository.Repository
	tmdb   TMDbClient
	images ImageService
	oplog  OperationLogService
	log    *zap.Logger
}

func NewActorService(
	repo *repository.Repository,
	tmdbClient TMDbClient,
	images ImageService,
	oplog OperationLogService,
	log *zap.Logger,
) ActorService {
	return &actorService{
		repo:   repo,
		tmdb:   tmdbClient,
		images: images,
		oplog:  oplog,
		log:    log.With(zap.String("service", "actor")),
	}
}

func (s *actorService) find(ctx context.Context, actorID string) (*entity.Actor, error) {
	id, err := parseID(actorID, "actor")
	if err != nil {
		return nil, err
	}

	actor, err := s.repo.Actor.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("actor %s: %w", actorID, ErrNotFound)
	}
	return actor, nil
}

func (s *actorService) GetActor(ctx context.Context, actorID string) (*response.ActorDetailResponse, error) {
	actor, err := s.find(ctx, actorID)
	if err != nil {
		return nil, err
	}

	movieCredits, err := s.repo.Cast.FindCredits(ctx, entity.KindMovie, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get movie credits: %w", err)
	}

	tvCredits, err := s.repo.Cast.FindCredits(ctx, entity.KindTV, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get tv credits: %w", err)
	}

	return &response.ActorDetailResponse{
		ActorResponse: response.ActorToResponse(actor),
		MovieCredits:  response.CreditsToResponse(movieCredits),
		TVCredits:     response.CreditsToResponse(tvCredits),
	}, nil
}

func (s *actorService) UpdateActor(ctx context.Context, actorID string, req *request.ActorUpdateRequest) (*response.ActorResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	actor, err := s.find(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.Name != nil {
		actor.Name = *req.Name
		changed = append(changed, "name")
	}
	if req.Biography != nil {
		actor.Biography = req.Biography
		changed = append(changed, "biography")
	}
	if req.Birthday != nil {
		actor.Birthday = parseOptionalDate(*req.Birthday)
		changed = append(changed, "birthday")
	}
	if req.PlaceOfBirth != nil {
		actor.PlaceOfBirth = req.PlaceOfBirth
		changed = append(changed, "place_of_birth")
	}
	if req.Popularity != nil {
		actor.Popularity = *req.Popularity
		changed = append(changed, "popularity")
	}

	if len(changed) > 0 {
		if err := s.repo.Actor.Update(ctx, actor); err != nil {
			return nil, fmt.Errorf("update actor: %w", err)
		}

		s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionUpdate, entity.ResourceActor, &actor.ID, actor.Name,
			map[string]any{"fields": changed})
	}

	resp := response.ActorToResponse(actor)
	return &resp, nil
}

func (s *actorService) DeleteActor(ctx context.Context, actorID string) error {
	actor, err := s.find(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.repo.Actor.Delete(ctx, actor.ID); err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}

	s.images.RemoveObjects(ctx, actor.ProfileURL)

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceActor, &actor.ID, actor.Name,
		map[string]any{"tmdb_id": actor.TMDbID})

	s.log.Info("Actor deleted", zap.String("actor_id", actorID), zap.String("name", actor.Name))
	return nil
}

// RefreshActor reloads biographical data from TMDb. The stored profile
// image is kept; image sync replaces it.
func (s *actorService) RefreshActor(ctx context.Context, actorID string) (*response.ActorResponse, error) {
	actor, err := s.find(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.TMDbID == nil {
		return nil, fmt.Errorf("actor %s was not imported from TMDb: %w", actor.Name, ErrInvalidInput)
	}
	if s.tmdb == nil || !s.tmdb.Configured() {
		return nil, fmt.Errorf("tmdb is not configured: %w", ErrUpstream)
	}

	person, err := s.tmdb.GetPerson(ctx, *actor.TMDbID)
	if err != nil {
		return nil, upstreamError("fetch person from tmdb", err)
	}

	refreshed := personToActor(person, s.tmdb)
	refreshed.ID = actor.ID
	if _, err := s.repo.Actor.Upsert(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("refresh actor: %w", err)
	}

	updated, err := s.find(ctx, actorID)
	if err != nil {
		return nil, err
	}

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionUpdate, entity.ResourceActor, &updated.ID, updated.Name,
		map[string]any{"source": "tmdb", "tmdb_id": *actor.TMDbID})

	resp := response.ActorToResponse(updated)
	return &resp, nil
}

func personToActor(person *tmdb.Person, client TMDbClient) *entity.Actor {
	tmdbID := person.ID
	return &entity.Actor{
		TMDbID:       &tmdbID,
		Name:         person.Name,
		Biography:    utils.StringPtr(person.Biography),
		Birthday:     tmdb.ParseDate(person.Birthday),
		PlaceOfBirth: utils.StringPtr(person.PlaceOfBirth),
		ProfileURL:   client.ImageURL(person.ProfilePath),
		Popularity:   person.Popularity,
	}
}
