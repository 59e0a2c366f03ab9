package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------- reviews

type ReviewRepo struct{ s *Store }

func (s *Store) mediaTitle(kind entity.MediaKind, id uuid.UUID) (string, bool) {
	if kind == entity.KindTV {
		if show, ok := s.TVShows[id]; ok {
			return show.Name, true
		}
		return "", false
	}
	if movie, ok := s.Movies[id]; ok {
		return movie.Title, true
	}
	return "", false
}

func (r *ReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return err
	}
	for _, existing := range r.s.Reviews {
		if existing.Kind == review.Kind && existing.MediaID == review.MediaID && existing.UserID == review.UserID {
			return fmt.Errorf("review: %w", repository.ErrDuplicate)
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt, review.UpdatedAt = time.Now(), time.Now()
	copied := *review
	r.s.Reviews = append(r.s.Reviews, &copied)
	return nil
}

// joined fills the columns the SQL join provides.
func (r *ReviewRepo) joined(review *entity.Review) *entity.Review {
	copied := *review
	copied.MediaTitle, _ = r.s.mediaTitle(review.Kind, review.MediaID)
	if user, ok := r.s.Users[review.UserID]; ok {
		copied.Username = user.Username
	}
	return &copied
}

func (r *ReviewRepo) FindByID(_ context.Context, kind entity.MediaKind, id uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, review := range r.s.Reviews {
		if review.Kind == kind && review.ID == id {
			return r.joined(review), nil
		}
	}
	return nil, nil
}

func (r *ReviewRepo) byMedia(kind entity.MediaKind, mediaID uuid.UUID) []*entity.Review {
	var reviews []*entity.Review
	for i := len(r.s.Reviews) - 1; i >= 0; i-- {
		review := r.s.Reviews[i]
		if review.Kind == kind && review.MediaID == mediaID {
			reviews = append(reviews, r.joined(review))
		}
	}
	return reviews
}

func (r *ReviewRepo) FindByMedia(_ context.Context, kind entity.MediaKind, mediaID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.byMedia(kind, mediaID), limit, offset), nil
}

func (r *ReviewRepo) CountByMedia(_ context.Context, kind entity.MediaKind, mediaID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.byMedia(kind, mediaID))), nil
}

func (r *ReviewRepo) FindByUserAndMedia(_ context.Context, kind entity.MediaKind, userID, mediaID uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, review := range r.s.Reviews {
		if review.Kind == kind && review.UserID == userID && review.MediaID == mediaID {
			return r.joined(review), nil
		}
	}
	return nil, nil
}

func (r *ReviewRepo) Delete(_ context.Context, kind entity.MediaKind, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, review := range r.s.Reviews {
		if review.Kind == kind && review.ID == id {
			r.s.Reviews = append(r.s.Reviews[:i], r.s.Reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *ReviewRepo) GetStats(_ context.Context, kind entity.MediaKind, mediaID uuid.UUID) (*entity.ReviewStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.ReviewStats{}
	var total int
	for _, review := range r.byMedia(kind, mediaID) {
		total += review.Rating
		stats.ReviewCount++
	}
	if stats.ReviewCount > 0 {
		stats.AverageRating = float64(total) / float64(stats.ReviewCount)
	}
	return stats, nil
}

func (r *ReviewRepo) recent(kind entity.MediaKind) []*entity.Review {
	var reviews []*entity.Review
	for i := len(r.s.Reviews) - 1; i >= 0; i-- {
		review := r.s.Reviews[i]
		if kind == "" || review.Kind == kind {
			reviews = append(reviews, r.joined(review))
		}
	}
	return reviews
}

func (r *ReviewRepo) FindRecent(_ context.Context, kind entity.MediaKind, limit, offset int) ([]*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.recent(kind), limit, offset), nil
}

func (r *ReviewRepo) CountRecent(_ context.Context, kind entity.MediaKind) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.recent(kind))), nil
}

// ---------------------------------------------------------------- operation logs

type OperationLogRepo struct{ s *Store }

func (r *OperationLogRepo) Create(_ context.Context, log *entity.OperationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return err
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	copied := *log
	r.s.Logs = append(r.s.Logs, &copied)
	return nil
}

func (r *OperationLogRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.OperationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, log := range r.s.Logs {
		if log.ID == id {
			copied := *log
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *OperationLogRepo) filtered(filter repository.OperationLogFilter) []*entity.OperationLog {
	var logs []*entity.OperationLog
	for i := len(r.s.Logs) - 1; i >= 0; i-- {
		log := r.s.Logs[i]
		if filter.Action != "" && string(log.Action) != filter.Action {
			continue
		}
		if filter.ResourceType != "" && string(log.ResourceType) != filter.ResourceType {
			continue
		}
		if filter.UserID != nil && (log.UserID == nil || *log.UserID != *filter.UserID) {
			continue
		}
		if filter.Query != "" && !ptrContains(log.ResourceName, filter.Query) {
			continue
		}
		logs = append(logs, log)
	}
	return logs
}

func (r *OperationLogRepo) FindAll(_ context.Context, filter repository.OperationLogFilter, limit, offset int) ([]*entity.OperationLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.filtered(filter), limit, offset), nil
}

func (r *OperationLogRepo) CountAll(_ context.Context, filter repository.OperationLogFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

func (r *OperationLogRepo) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.Logs[:0]
	var deleted int64
	for _, log := range r.s.Logs {
		if log.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, log)
	}
	r.s.Logs = kept
	return deleted, nil
}

func (r *OperationLogRepo) BackfillSnapshots(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var touched int64
	for _, log := range r.s.Logs {
		changed := false
		if (log.ResourceName == nil || *log.ResourceName == "") && log.ResourceID != nil {
			if name, ok := r.s.resourceName(log.ResourceType, *log.ResourceID); ok {
				log.ResourceName = &name
				changed = true
			}
		}
		if log.Username == "" && log.UserID != nil {
			if user, ok := r.s.Users[*log.UserID]; ok {
				log.Username = user.Username
				changed = true
			}
		}
		if changed {
			touched++
		}
	}
	return touched, nil
}

func (s *Store) resourceName(resource entity.ResourceType, id uuid.UUID) (string, bool) {
	switch resource {
	case entity.ResourceMovie:
		return s.mediaTitle(entity.KindMovie, id)
	case entity.ResourceTV:
		return s.mediaTitle(entity.KindTV, id)
	case entity.ResourceActor:
		if actor, ok := s.Actors[id]; ok {
			return actor.Name, true
		}
	case entity.ResourceUser:
		if user, ok := s.Users[id]; ok {
			return user.Username, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------- stats

type StatsRepo struct{ s *Store }

func (r *StatsRepo) Dashboard(_ context.Context, since time.Time) (*entity.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.DashboardStats{
		Movies:  int64(len(r.s.Movies)),
		TVShows: int64(len(r.s.TVShows)),
		Actors:  int64(len(r.s.Actors)),
		Users:   int64(len(r.s.Users)),
		Reviews: int64(len(r.s.Reviews)),
	}
	for _, log := range r.s.Logs {
		if log.CreatedAt.Before(since) {
			continue
		}
		stats.RecentLogs++
		if log.Action == entity.ActionImport {
			stats.ImportedLast++
		}
	}
	return stats, nil
}

func (r *StatsRepo) Genres(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	for _, movie := range r.s.Movies {
		for _, genre := range movie.Genres {
			seen[genre] = true
		}
	}
	for _, show := range r.s.TVShows {
		for _, genre := range show.Genres {
			seen[genre] = true
		}
	}
	genres := make([]string, 0, len(seen))
	for genre := range seen {
		genres = append(genres, genre)
	}
	sort.Strings(genres)
	return genres, nil
}

// ---------------------------------------------------------------- housekeeping

type HousekeepingRepo struct{ s *Store }

// DumpTable encodes the fake's entities; only users, movies, tv_shows and
// actors carry rows, the rest dump empty.
func (r *HousekeepingRepo) DumpTable(_ context.Context, table string, fn func(row []byte) error) (int64, error) {
	r.s.mu.Lock()
	var rows []any
	switch table {
	case "users":
		for _, u := range r.s.Users {
			rows = append(rows, u)
		}
	case "movies":
		for _, m := range r.s.Movies {
			rows = append(rows, m)
		}
	case "tv_shows":
		for _, show := range r.s.TVShows {
			rows = append(rows, show)
		}
	case "actors":
		for _, actor := range r.s.Actors {
			rows = append(rows, actor)
		}
	default:
		known := false
		for _, t := range repository.BackupTables {
			known = known || t == table
		}
		if !known {
			r.s.mu.Unlock()
			return 0, fmt.Errorf("unknown table %q", table)
		}
	}
	r.s.mu.Unlock()

	var count int64
	for _, row := range rows {
		doc, err := json.Marshal(row)
		if err != nil {
			return count, err
		}
		if err := fn(doc); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (r *HousekeepingRepo) ReferencedImageURLs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var urls []string
	add := func(url *string) {
		if url != nil && strings.TrimSpace(*url) != "" {
			urls = append(urls, *url)
		}
	}
	for _, m := range r.s.Movies {
		add(m.PosterURL)
		add(m.BackdropURL)
	}
	for _, show := range r.s.TVShows {
		add(show.PosterURL)
		add(show.BackdropURL)
	}
	for _, actor := range r.s.Actors {
		add(actor.ProfileURL)
	}
	return urls, nil
}
