package housekeeping

import (
	"context"
	"fmt"
	"sync"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"
	"watch-list/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultSyncConcurrency = 4

type SyncOptions struct {
	// Type limits the run to movie, tv or actor; empty means all three.
	Type        string
	Limit       int
	Concurrency int
}

type SyncFailure struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Error        string `json:"error"`
}

type SyncReport struct {
	Attempted int           `json:"attempted"`
	Synced    int           `json:"synced"`
	Failures  []SyncFailure `json:"failures,omitempty"`
}

type ImageSyncer struct {
	repo      *repository.Repository
	images    usecase.ImageService
	ossPrefix string
	log       *zap.Logger
}

// NewImageSyncer treats any URL not starting with ossPrefix as still hosted
// by TMDb.
func NewImageSyncer(repo *repository.Repository, images usecase.ImageService, ossPrefix string, log *zap.Logger) *ImageSyncer {
	return &ImageSyncer{
		repo:      repo,
		images:    images,
		ossPrefix: ossPrefix,
		log:       log.With(zap.String("job", "image_sync")),
	}
}

type syncItem struct {
	resource entity.ResourceType
	id       uuid.UUID
}

func (s *ImageSyncer) pending(ctx context.Context, opts SyncOptions) ([]syncItem, error) {
	type finder func(ctx context.Context, ossPrefix string, limit int) ([]uuid.UUID, error)

	sources := []struct {
		resource entity.ResourceType
		find     finder
	}{
		{entity.ResourceMovie, s.repo.Movie.FindPendingImages},
		{entity.ResourceTV, s.repo.TV.FindPendingImages},
		{entity.ResourceActor, s.repo.Actor.FindPendingImages},
	}

	var items []syncItem
	matched := false
	for _, source := range sources {
		if opts.Type != "" && opts.Type != string(source.resource) {
			continue
		}
		matched = true

		ids, err := source.find(ctx, s.ossPrefix, opts.Limit)
		if err != nil {
			return nil, fmt.Errorf("find pending %s images: %w", source.resource, err)
		}
		for _, id := range ids {
			items = append(items, syncItem{resource: source.resource, id: id})
		}
	}
	if !matched {
		return nil, fmt.Errorf("unknown resource type %q", opts.Type)
	}

	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, nil
}

// Run pushes pending images through the pipeline with bounded concurrency.
// A failing record is reported and never stops the others.
func (s *ImageSyncer) Run(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	items, err := s.pending(ctx, opts)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultSyncConcurrency
	}

	report := &SyncReport{Attempted: len(items)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, item := range items {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			result, err := s.images.Sync(ctx, string(item.resource), item.id.String())

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				report.Failures = append(report.Failures, SyncFailure{
					ResourceType: string(item.resource),
					ResourceID:   item.id.String(),
					Error:        err.Error(),
				})
			case len(result.Failed) > 0:
				for kind, reason := range result.Failed {
					report.Failures = append(report.Failures, SyncFailure{
						ResourceType: string(item.resource),
						ResourceID:   item.id.String(),
						Error:        kind + ": " + reason,
					})
				}
			default:
				report.Synced++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("Image sync finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("synced", report.Synced),
		zap.Int("failures", len(report.Failures)),
	)

	return report, ctx.Err()
}
