// Package repotest provides in-memory repositories for service and handler
// tests. Behaviour mirrors the postgres implementations closely enough for
// business rules: lookups return (nil, nil) on a miss, mutations return
// repository.ErrNotFound and unique violations repository.ErrDuplicate.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"

	"github.com/google/uuid"
)

// Store is the shared state behind every fake so joins (cast, reviews,
// orphans) behave like the database.
type Store struct {
	mu       sync.Mutex
	Users    map[uuid.UUID]*entity.User
	Movies   map[uuid.UUID]*entity.Movie
	TVShows  map[uuid.UUID]*entity.TVShow
	Actors   map[uuid.UUID]*entity.Actor
	Casts    map[entity.MediaKind]map[uuid.UUID][]entity.CastEntry
	Reviews  []*entity.Review
	Logs     []*entity.OperationLog
	FailNext error
}

func NewStore() *Store {
	return &Store{
		Users:   map[uuid.UUID]*entity.User{},
		Movies:  map[uuid.UUID]*entity.Movie{},
		TVShows: map[uuid.UUID]*entity.TVShow{},
		Actors:  map[uuid.UUID]*entity.Actor{},
		Casts: map[entity.MediaKind]map[uuid.UUID][]entity.CastEntry{
			entity.KindMovie: {},
			entity.KindTV:    {},
		},
	}
}

// NewRepository wires every fake onto one Store.
func NewRepository(store *Store) *repository.Repository {
	return &repository.Repository{
		User:         &UserRepo{store},
		Movie:        &MovieRepo{store},
		TV:           &TVRepo{store},
		Actor:        &ActorRepo{store},
		Cast:         &CastRepo{store},
		Review:       &ReviewRepo{store},
		OperationLog: &OperationLogRepo{store},
		Stats:        &StatsRepo{store},
		Housekeeping: &HousekeepingRepo{store},
	}
}

// fail consumes FailNext, letting tests inject a single error.
func (s *Store) fail() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || limit <= 0 {
		end = len(items)
	}
	return items[offset:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func ptrContains(haystack *string, needle string) bool {
	return haystack != nil && contains(*haystack, needle)
}

// ---------------------------------------------------------------- users

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(user)
}

func (r *UserRepo) Register(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	role := entity.RoleUser
	if len(r.s.Users) == 0 {
		role = entity.RoleAdmin
	}
	user.Role = role
	return r.insert(user)
}

// insert expects the store lock held.
func (r *UserRepo) insert(user *entity.User) error {
	if err := r.s.fail(); err != nil {
		return err
	}
	for _, u := range r.s.Users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return fmt.Errorf("user %s: %w", user.Username, repository.ErrDuplicate)
		}
	}
	copied := *user
	r.s.Users[user.ID] = &copied
	return nil
}

func (r *UserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.s.Users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]*entity.User, 0, len(r.s.Users))
	for _, u := range r.s.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return page(users, limit, offset), nil
}

func (r *UserRepo) CountAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.Users)), nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id uuid.UUID, role entity.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Users, id)
	kept := r.s.Reviews[:0]
	for _, rv := range r.s.Reviews {
		if rv.UserID != id {
			kept = append(kept, rv)
		}
	}
	r.s.Reviews = kept
	return nil
}

// ---------------------------------------------------------------- movies

type MovieRepo struct{ s *Store }

func (r *MovieRepo) Upsert(_ context.Context, movie *entity.Movie) (uuid.UUID, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return uuid.Nil, false, err
	}
	for _, m := range r.s.Movies {
		if m.TMDbID != nil && movie.TMDbID != nil && *m.TMDbID == *movie.TMDbID {
			poster, backdrop := m.PosterURL, m.BackdropURL
			id, created := m.ID, m.CreatedAt
			*m = *movie
			m.ID, m.CreatedAt, m.UpdatedAt = id, created, time.Now()
			if poster != nil {
				m.PosterURL = poster
			}
			if backdrop != nil {
				m.BackdropURL = backdrop
			}
			movie.ID = id
			return id, false, nil
		}
	}
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	copied := *movie
	copied.CreatedAt, copied.UpdatedAt = time.Now(), time.Now()
	r.s.Movies[movie.ID] = &copied
	return movie.ID, true, nil
}

func (r *MovieRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	if m, ok := r.s.Movies[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (r *MovieRepo) FindByTMDbIDs(_ context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]uuid.UUID{}
	for _, m := range r.s.Movies {
		for _, id := range tmdbIDs {
			if m.TMDbID != nil && *m.TMDbID == id {
				out[id] = m.ID
			}
		}
	}
	return out, nil
}

func (r *MovieRepo) filtered(filter repository.MediaFilter) []*entity.Movie {
	var movies []*entity.Movie
	for _, m := range r.s.Movies {
		if filter.Genre != "" && !containsString(m.Genres, filter.Genre) {
			continue
		}
		if filter.Year != 0 && (m.ReleaseDate == nil || m.ReleaseDate.Year() != filter.Year) {
			continue
		}
		movies = append(movies, m)
	}
	sort.Slice(movies, func(i, j int) bool {
		if filter.Sort == repository.SortCreatedAt {
			return movies[i].CreatedAt.After(movies[j].CreatedAt)
		}
		return movies[i].Popularity > movies[j].Popularity
	})
	return movies
}

func (r *MovieRepo) FindAll(_ context.Context, filter repository.MediaFilter, limit, offset int) ([]*entity.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	return page(r.filtered(filter), limit, offset), nil
}

func (r *MovieRepo) CountAll(_ context.Context, filter repository.MediaFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

func (r *MovieRepo) matches(q string) []*entity.Movie {
	var movies []*entity.Movie
	for _, m := range r.s.Movies {
		if contains(m.Title, q) || ptrContains(m.OriginalTitle, q) {
			movies = append(movies, m)
		}
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].Popularity > movies[j].Popularity })
	return movies
}

func (r *MovieRepo) Search(_ context.Context, q string, limit, offset int) ([]*entity.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matches(q), limit, offset), nil
}

func (r *MovieRepo) CountSearch(_ context.Context, q string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matches(q))), nil
}

func (r *MovieRepo) Update(_ context.Context, movie *entity.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Movies[movie.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.Title, m.Overview, m.Tagline = movie.Title, movie.Overview, movie.Tagline
	m.ReleaseDate, m.Runtime, m.Status, m.Genres = movie.ReleaseDate, movie.Runtime, movie.Status, movie.Genres
	m.UpdatedAt = time.Now()
	return nil
}

func (r *MovieRepo) UpdateImage(_ context.Context, id uuid.UUID, kind string, url *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Movies[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch kind {
	case repository.ImagePoster:
		m.PosterURL = url
	case repository.ImageBackdrop:
		m.BackdropURL = url
	default:
		return fmt.Errorf("unsupported image kind %q", kind)
	}
	return nil
}

func (r *MovieRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Movies, id)
	r.s.dropMedia(entity.KindMovie, id)
	return nil
}

func (r *MovieRepo) FindPendingImages(_ context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range r.s.Movies {
		if m.TMDbID != nil && (pending(m.PosterURL, ossPrefix) || pending(m.BackdropURL, ossPrefix)) {
			ids = append(ids, m.ID)
		}
	}
	return page(ids, limit, 0), nil
}

func pending(url *string, prefix string) bool {
	return url != nil && !strings.HasPrefix(*url, prefix)
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// dropMedia mimics ON DELETE CASCADE for casts and reviews.
func (s *Store) dropMedia(kind entity.MediaKind, id uuid.UUID) {
	delete(s.Casts[kind], id)
	kept := s.Reviews[:0]
	for _, rv := range s.Reviews {
		if !(rv.Kind == kind && rv.MediaID == id) {
			kept = append(kept, rv)
		}
	}
	s.Reviews = kept
}
