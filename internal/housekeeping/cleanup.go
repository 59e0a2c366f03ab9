package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"watch-list/internal/data/repository"
	"watch-list/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStore is what the orphan sweep needs from the bucket.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// objectGracePeriod protects uploads whose URL is not committed yet.
const objectGracePeriod = time.Hour

// errUnmappedReferences stops the object sweep when stored URLs exist but
// none of them maps to a key, which means the public URL setting changed.
var errUnmappedReferences = errors.New("no referenced image URL maps to a bucket key, check STORAGE_PUBLIC_URL")

type CleanupReport struct {
	Applied        bool     `json:"applied"`
	OrphanActors   []string `json:"orphan_actors"`
	DeletedActors  int64    `json:"deleted_actors"`
	OrphanObjects  []string `json:"orphan_objects"`
	DeletedObjects int      `json:"deleted_objects"`
	SkippedRecent  int      `json:"skipped_recent"`
}

type Cleaner struct {
	repo    *repository.Repository
	objects ObjectStore
	grace   time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// NewCleaner skips the object sweep when objects is nil.
func NewCleaner(repo *repository.Repository, objects ObjectStore, log *zap.Logger) *Cleaner {
	return &Cleaner{
		repo:    repo,
		objects: objects,
		grace:   objectGracePeriod,
		now:     time.Now,
		log:     log.With(zap.String("job", "cleanup")),
	}
}

// Run finds orphan actors and unreferenced image objects. Nothing is deleted
// unless apply is set.
func (c *Cleaner) Run(ctx context.Context, apply bool) (*CleanupReport, error) {
	report := &CleanupReport{Applied: apply, OrphanActors: []string{}, OrphanObjects: []string{}}

	if err := c.sweepActors(ctx, apply, report); err != nil {
		return report, err
	}
	if c.objects == nil {
		c.log.Info("Object storage not configured, skipping object sweep")
		return report, nil
	}
	if err := c.sweepObjects(ctx, apply, report); err != nil {
		return report, err
	}

	return report, nil
}

func (c *Cleaner) sweepActors(ctx context.Context, apply bool, report *CleanupReport) error {
	orphans, err := c.repo.Actor.FindOrphans(ctx)
	if err != nil {
		return fmt.Errorf("find orphan actors: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(orphans))
	for _, actor := range orphans {
		ids = append(ids, actor.ID)
		report.OrphanActors = append(report.OrphanActors, actor.Name)
	}

	if !apply || len(ids) == 0 {
		return nil
	}

	deleted, err := c.repo.Actor.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete orphan actors: %w", err)
	}
	report.DeletedActors = deleted

	c.log.Info("Orphan actors deleted", zap.Int64("count", deleted))
	return nil
}

// sweepObjects runs after the actor sweep so profiles of deleted actors
// count as orphans in the same pass. Objects written after cutoff are left
// alone: an upload may have stored its object but not yet its URL.
func (c *Cleaner) sweepObjects(ctx context.Context, apply bool, report *CleanupReport) error {
	cutoff := c.now().Add(-c.grace)

	urls, err := c.repo.Housekeeping.ReferencedImageURLs(ctx)
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if key, ok := c.objects.KeyFromURL(url); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := c.objects.List(ctx, storage.ImagePrefix)
	if err != nil {
		return err
	}

	if len(referenced) == 0 && len(objects) > 0 && hasStoredURL(urls) {
		return errUnmappedReferences
	}

	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			report.SkippedRecent++
			continue
		}
		report.OrphanObjects = append(report.OrphanObjects, obj.Key)

		if !apply {
			continue
		}
		if err := c.objects.Delete(ctx, obj.Key); err != nil {
			c.log.Warn("Failed to delete orphan object", zap.Error(err), zap.String("key", obj.Key))
			continue
		}
		report.DeletedObjects++
	}

	if apply {
		c.log.Info("Orphan objects deleted",
			zap.Int("count", report.DeletedObjects),
			zap.Int("skipped_recent", report.SkippedRecent))
	}
	return nil
}

// hasStoredURL reports whether any URL points at a processed image rather
// than a remote TMDb source.
func hasStoredURL(urls []string) bool {
	for _, url := range urls {
		if strings.Contains(url, "/"+storage.ImagePrefix) {
			return true
		}
	}
	return false
}
