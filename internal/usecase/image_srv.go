package usecase

import (
	"context"
	"fmt"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/dto/response"
	"watch-list/pkg/imageproc"
	"watch-list/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ImageService interface {
	Upload(ctx context.Context, resourceType, id, kind string, data []byte) (*response.ImageResponse, error)
	// Sync re-downloads the TMDb images of a record and stores them in OSS.
	Sync(ctx context.Context, resourceType, id string) (*response.ImageSyncResponse, error)
	Delete(ctx context.Context, resourceType, id, kind string) error
	// ApplyRemote pushes already known TMDb file paths, keyed by image kind,
	// through the pipeline. It returns the stored URLs and per-kind failures.
	ApplyRemote(ctx context.Context, resource entity.ResourceType, id uuid.UUID, paths map[string]string) (map[string]string, map[string]string)
	// RemoveObjects deletes the OSS objects behind urls, ignoring foreign URLs.
	RemoveObjects(ctx context.Context, urls ...*string)
}

type imageService struct {
	repo      *repository.Repository
	tmdb      TMDbClient
	store     ObjectStore
	processor ImageProcessor
	oplog     OperationLogService
	log       *zap.Logger
}

func NewImageService(repo *repository.Repository, deps Deps, oplog OperationLogService, log *zap.Logger) ImageService {
	return &imageService{
		repo:      repo,
		tmdb:      deps.TMDb,
		store:     deps.Storage,
		processor: deps.Images,
		oplog:     oplog,
		log:       log.With(zap.String("service", "image")),
	}
}

// imageTarget is the record an image belongs to, with its current URLs.
type imageTarget struct {
	resource entity.ResourceType
	id       uuid.UUID
	name     string
	tmdbID   *int64
	urls     map[string]*string
}

func imageKinds(resource entity.ResourceType) []string {
	if resource == entity.ResourceActor {
		return []string{repository.ImageProfile}
	}
	return []string{repository.ImagePoster, repository.ImageBackdrop}
}

func parseResource(resourceType string) (entity.ResourceType, error) {
	switch resource := entity.ResourceType(resourceType); resource {
	case entity.ResourceMovie, entity.ResourceTV, entity.ResourceActor:
		return resource, nil
	default:
		return "", fmt.Errorf("unsupported image resource %q: %w", resourceType, ErrInvalidInput)
	}
}

func checkKind(resource entity.ResourceType, kind string) error {
	for _, k := range imageKinds(resource) {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("image kind %q is not valid for %s: %w", kind, resource, ErrInvalidInput)
}

func (s *imageService) load(ctx context.Context, resource entity.ResourceType, id uuid.UUID) (*imageTarget, error) {
	target := &imageTarget{resource: resource, id: id}

	switch resource {
	case entity.ResourceMovie:
		movie, err := s.repo.Movie.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find movie: %w", err)
		}
		if movie == nil {
			return nil, fmt.Errorf("movie %s: %w", id, ErrNotFound)
		}
		target.name, target.tmdbID = movie.Title, movie.TMDbID
		target.urls = map[string]*string{repository.ImagePoster: movie.PosterURL, repository.ImageBackdrop: movie.BackdropURL}
	case entity.ResourceTV:
		show, err := s.repo.TV.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find tv show: %w", err)
		}
		if show == nil {
			return nil, fmt.Errorf("tv show %s: %w", id, ErrNotFound)
		}
		target.name, target.tmdbID = show.Name, show.TMDbID
		target.urls = map[string]*string{repository.ImagePoster: show.PosterURL, repository.ImageBackdrop: show.BackdropURL}
	case entity.ResourceActor:
		actor, err := s.repo.Actor.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find actor: %w", err)
		}
		if actor == nil {
			return nil, fmt.Errorf("actor %s: %w", id, ErrNotFound)
		}
		target.name, target.tmdbID = actor.Name, actor.TMDbID
		target.urls = map[string]*string{repository.ImageProfile: actor.ProfileURL}
	default:
		return nil, fmt.Errorf("unsupported image resource %q: %w", resource, ErrInvalidInput)
	}

	return target, nil
}

func (s *imageService) setURL(ctx context.Context, target *imageTarget, kind string, url *string) error {
	switch target.resource {
	case entity.ResourceMovie:
		return s.repo.Movie.UpdateImage(ctx, target.id, kind, url)
	case entity.ResourceTV:
		return s.repo.TV.UpdateImage(ctx, target.id, kind, url)
	default:
		return s.repo.Actor.UpdateProfile(ctx, target.id, url)
	}
}

// push processes raw, stores it and points the record at the new object.
// The previous object is removed once the record is updated.
func (s *imageService) push(ctx context.Context, target *imageTarget, kind string, raw []byte) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("object storage is not configured: %w", ErrUpstream)
	}

	processed, err := s.processor.Process(raw, kind)
	if err != nil {
		return "", fmt.Errorf("process %s image: %w: %v", kind, ErrInvalidInput, err)
	}

	key := storage.ImageKey(string(target.resource), target.id.String(), kind, processed)
	url, err := s.store.Put(ctx, key, processed, imageproc.ContentType)
	if err != nil {
		return "", upstreamError("upload image", err)
	}

	previous := target.urls[kind]
	if err := s.setURL(ctx, target, kind, &url); err != nil {
		s.RemoveObjects(ctx, &url)
		return "", fmt.Errorf("save %s url: %w", kind, err)
	}
	if previous != nil && *previous != url {
		s.RemoveObjects(ctx, previous)
	}
	target.urls[kind] = &url

	return url, nil
}

func (s *imageService) Upload(ctx context.Context, resourceType, id, kind string, data []byte) (*response.ImageResponse, error) {
	resource, err := parseResource(resourceType)
	if err != nil {
		return nil, err
	}
	if err := checkKind(resource, kind); err != nil {
		return nil, err
	}
	recordID, err := parseID(id, resourceType)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image upload: %w", ErrInvalidInput)
	}

	target, err := s.load(ctx, resource, recordID)
	if err != nil {
		return nil, err
	}

	url, err := s.push(ctx, target, kind, data)
	if err != nil {
		return nil, err
	}

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionImageUpload, resource, &recordID, target.name,
		map[string]any{"kind": kind, "url": url, "bytes": len(data)})

	s.log.Info("Image uploaded",
		zap.String("resource_type", resourceType),
		zap.String("resource_id", id),
		zap.String("kind", kind),
	)

	return &response.ImageResponse{ResourceType: resourceType, ResourceID: id, Kind: kind, URL: &url}, nil
}

func (s *imageService) Delete(ctx context.Context, resourceType, id, kind string) error {
	resource, err := parseResource(resourceType)
	if err != nil {
		return err
	}
	if err := checkKind(resource, kind); err != nil {
		return err
	}
	recordID, err := parseID(id, resourceType)
	if err != nil {
		return err
	}

	target, err := s.load(ctx, resource, recordID)
	if err != nil {
		return err
	}

	previous := target.urls[kind]
	if previous == nil {
		return fmt.Errorf("%s has no %s image: %w", target.name, kind, ErrNotFound)
	}

	if err := s.setURL(ctx, target, kind, nil); err != nil {
		return fmt.Errorf("clear %s url: %w", kind, err)
	}
	s.RemoveObjects(ctx, previous)

	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionDelete, entity.ResourceImage, &recordID, target.name,
		map[string]any{"resource_type": resourceType, "kind": kind, "url": *previous})

	return nil
}

func (s *imageService) Sync(ctx context.Context, resourceType, id string) (*response.ImageSyncResponse, error) {
	resource, err := parseResource(resourceType)
	if err != nil {
		return nil, err
	}
	recordID, err := parseID(id, resourceType)
	if err != nil {
		return nil, err
	}

	target, err := s.load(ctx, resource, recordID)
	if err != nil {
		return nil, err
	}
	if target.tmdbID == nil {
		return nil, fmt.Errorf("%s was not imported from TMDb: %w", target.name, ErrInvalidInput)
	}

	paths, err := s.remotePaths(ctx, resource, *target.tmdbID)
	if err != nil {
		return nil, err
	}

	synced, failed := s.applyRemote(ctx, target, paths)

	details := map[string]any{"synced": synced}
	if len(failed) > 0 {
		details["failed"] = failed
	}
	s.oplog.Record(ctx, ActorFromContext(ctx), entity.ActionImageSync, resource, &recordID, target.name, details)

	return &response.ImageSyncResponse{
		ResourceType: resourceType,
		ResourceID:   id,
		Synced:       synced,
		Failed:       failed,
	}, nil
}

func (s *imageService) ApplyRemote(ctx context.Context, resource entity.ResourceType, id uuid.UUID, paths map[string]string) (map[string]string, map[string]string) {
	target, err := s.load(ctx, resource, id)
	if err != nil {
		failed := make(map[string]string, len(paths))
		for kind := range paths {
			failed[kind] = err.Error()
		}
		return map[string]string{}, failed
	}
	return s.applyRemote(ctx, target, paths)
}

func (s *imageService) remotePaths(ctx context.Context, resource entity.ResourceType, tmdbID int64) (map[string]string, error) {
	if s.tmdb == nil || !s.tmdb.Configured() {
		return nil, fmt.Errorf("tmdb is not configured: %w", ErrUpstream)
	}

	switch resource {
	case entity.ResourceMovie:
		movie, err := s.tmdb.GetMovie(ctx, tmdbID)
		if err != nil {
			return nil, upstreamError("fetch movie from tmdb", err)
		}
		return map[string]string{repository.ImagePoster: movie.PosterPath, repository.ImageBackdrop: movie.BackdropPath}, nil
	case entity.ResourceTV:
		show, err := s.tmdb.GetTV(ctx, tmdbID)
		if err != nil {
			return nil, upstreamError("fetch tv show from tmdb", err)
		}
		return map[string]string{repository.ImagePoster: show.PosterPath, repository.ImageBackdrop: show.BackdropPath}, nil
	default:
		person, err := s.tmdb.GetPerson(ctx, tmdbID)
		if err != nil {
			return nil, upstreamError("fetch person from tmdb", err)
		}
		return map[string]string{repository.ImageProfile: person.ProfilePath}, nil
	}
}

// applyRemote is best effort: one failing kind does not stop the others.
func (s *imageService) applyRemote(ctx context.Context, target *imageTarget, paths map[string]string) (map[string]string, map[string]string) {
	synced := map[string]string{}
	failed := map[string]string{}

	for _, kind := range imageKinds(target.resource) {
		path := paths[kind]
		if path == "" {
			continue
		}

		raw, err := s.tmdb.DownloadImage(ctx, path)
		if err != nil {
			s.log.Warn("Failed to download TMDb image",
				zap.Error(err),
				zap.String("resource_id", target.id.String()),
				zap.String("kind", kind),
			)
			failed[kind] = err.Error()
			continue
		}

		url, err := s.push(ctx, target, kind, raw)
		if err != nil {
			s.log.Warn("Failed to store TMDb image",
				zap.Error(err),
				zap.String("resource_id", target.id.String()),
				zap.String("kind", kind),
			)
			failed[kind] = err.Error()
			continue
		}
		synced[kind] = url
	}

	if len(failed) == 0 {
		failed = nil
	}
	return synced, failed
}

func (s *imageService) RemoveObjects(ctx context.Context, urls ...*string) {
	if s.store == nil {
		return
	}

	for _, url := range urls {
		if url == nil {
			continue
		}
		key, ok := s.store.KeyFromURL(*url)
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("Failed to delete image object", zap.Error(err), zap.String("key", key))
		}
	}
}
