package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------- tv shows

type TVRepo struct{ s *Store }

func (r *TVRepo) Upsert(_ context.Context, show *entity.TVShow) (uuid.UUID, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return uuid.Nil, false, err
	}
	for _, existing := range r.s.TVShows {
		if existing.TMDbID != nil && show.TMDbID != nil && *existing.TMDbID == *show.TMDbID {
			poster, backdrop := existing.PosterURL, existing.BackdropURL
			id, created := existing.ID, existing.CreatedAt
			*existing = *show
			existing.ID, existing.CreatedAt, existing.UpdatedAt = id, created, time.Now()
			if poster != nil {
				existing.PosterURL = poster
			}
			if backdrop != nil {
				existing.BackdropURL = backdrop
			}
			show.ID = id
			return id, false, nil
		}
	}
	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	copied := *show
	copied.CreatedAt, copied.UpdatedAt = time.Now(), time.Now()
	r.s.TVShows[show.ID] = &copied
	return show.ID, true, nil
}

func (r *TVRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.TVShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	if show, ok := r.s.TVShows[id]; ok {
		copied := *show
		return &copied, nil
	}
	return nil, nil
}

func (r *TVRepo) FindByTMDbIDs(_ context.Context, tmdbIDs []int64) (map[int64]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]uuid.UUID{}
	for _, show := range r.s.TVShows {
		for _, id := range tmdbIDs {
			if show.TMDbID != nil && *show.TMDbID == id {
				out[id] = show.ID
			}
		}
	}
	return out, nil
}

func (r *TVRepo) filtered(filter repository.MediaFilter) []*entity.TVShow {
	var shows []*entity.TVShow
	for _, show := range r.s.TVShows {
		if filter.Genre != "" && !containsString(show.Genres, filter.Genre) {
			continue
		}
		if filter.Year != 0 && (show.FirstAirDate == nil || show.FirstAirDate.Year() != filter.Year) {
			continue
		}
		shows = append(shows, show)
	}
	sort.Slice(shows, func(i, j int) bool {
		if filter.Sort == repository.SortCreatedAt {
			return shows[i].CreatedAt.After(shows[j].CreatedAt)
		}
		return shows[i].Popularity > shows[j].Popularity
	})
	return shows
}

func (r *TVRepo) FindAll(_ context.Context, filter repository.MediaFilter, limit, offset int) ([]*entity.TVShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	return page(r.filtered(filter), limit, offset), nil
}

func (r *TVRepo) CountAll(_ context.Context, filter repository.MediaFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

func (r *TVRepo) matches(q string) []*entity.TVShow {
	var shows []*entity.TVShow
	for _, show := range r.s.TVShows {
		if contains(show.Name, q) || ptrContains(show.OriginalName, q) {
			shows = append(shows, show)
		}
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].Popularity > shows[j].Popularity })
	return shows
}

func (r *TVRepo) Search(_ context.Context, q string, limit, offset int) ([]*entity.TVShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matches(q), limit, offset), nil
}

func (r *TVRepo) CountSearch(_ context.Context, q string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matches(q))), nil
}

func (r *TVRepo) Update(_ context.Context, show *entity.TVShow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.TVShows[show.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name, existing.Overview = show.Name, show.Overview
	existing.FirstAirDate, existing.LastAirDate = show.FirstAirDate, show.LastAirDate
	existing.NumberOfSeasons, existing.NumberOfEpisodes = show.NumberOfSeasons, show.NumberOfEpisodes
	existing.Status, existing.Genres = show.Status, show.Genres
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *TVRepo) UpdateImage(_ context.Context, id uuid.UUID, kind string, url *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	show, ok := r.s.TVShows[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch kind {
	case repository.ImagePoster:
		show.PosterURL = url
	case repository.ImageBackdrop:
		show.BackdropURL = url
	default:
		return fmt.Errorf("unsupported image kind %q", kind)
	}
	return nil
}

func (r *TVRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.TVShows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.TVShows, id)
	r.s.dropMedia(entity.KindTV, id)
	return nil
}

func (r *TVRepo) FindPendingImages(_ context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, show := range r.s.TVShows {
		if show.TMDbID != nil && (pending(show.PosterURL, ossPrefix) || pending(show.BackdropURL, ossPrefix)) {
			ids = append(ids, show.ID)
		}
	}
	return page(ids, limit, 0), nil
}

// ---------------------------------------------------------------- actors

type ActorRepo struct{ s *Store }

func (r *ActorRepo) Upsert(_ context.Context, actor *entity.Actor) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return uuid.Nil, err
	}
	for _, existing := range r.s.Actors {
		if existing.TMDbID != nil && actor.TMDbID != nil && *existing.TMDbID == *actor.TMDbID {
			existing.Name, existing.Popularity = actor.Name, actor.Popularity
			if actor.Biography != nil {
				existing.Biography = actor.Biography
			}
			if actor.Birthday != nil {
				existing.Birthday = actor.Birthday
			}
			if actor.PlaceOfBirth != nil {
				existing.PlaceOfBirth = actor.PlaceOfBirth
			}
			if existing.ProfileURL == nil {
				existing.ProfileURL = actor.ProfileURL
			}
			existing.UpdatedAt = time.Now()
			return existing.ID, nil
		}
	}
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	copied := *actor
	copied.CreatedAt, copied.UpdatedAt = time.Now(), time.Now()
	r.s.Actors[actor.ID] = &copied
	return actor.ID, nil
}

func (r *ActorRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Actor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	if actor, ok := r.s.Actors[id]; ok {
		copied := *actor
		return &copied, nil
	}
	return nil, nil
}

func (r *ActorRepo) matches(q string) []*entity.Actor {
	var actors []*entity.Actor
	for _, actor := range r.s.Actors {
		if contains(actor.Name, q) {
			actors = append(actors, actor)
		}
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].Popularity > actors[j].Popularity })
	return actors
}

func (r *ActorRepo) Search(_ context.Context, q string, limit, offset int) ([]*entity.Actor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matches(q), limit, offset), nil
}

func (r *ActorRepo) CountSearch(_ context.Context, q string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matches(q))), nil
}

func (r *ActorRepo) Update(_ context.Context, actor *entity.Actor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.Actors[actor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name, existing.Biography, existing.Birthday = actor.Name, actor.Biography, actor.Birthday
	existing.PlaceOfBirth, existing.Popularity = actor.PlaceOfBirth, actor.Popularity
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *ActorRepo) UpdateProfile(_ context.Context, id uuid.UUID, url *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	actor, ok := r.s.Actors[id]
	if !ok {
		return repository.ErrNotFound
	}
	actor.ProfileURL = url
	return nil
}

func (r *ActorRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Actors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Actors, id)
	for _, byMedia := range r.s.Casts {
		for mediaID, entries := range byMedia {
			kept := entries[:0]
			for _, entry := range entries {
				if entry.ActorID != id {
					kept = append(kept, entry)
				}
			}
			byMedia[mediaID] = kept
		}
	}
	return nil
}

func (s *Store) isCast(actorID uuid.UUID) bool {
	for _, byMedia := range s.Casts {
		for _, entries := range byMedia {
			for _, entry := range entries {
				if entry.ActorID == actorID {
					return true
				}
			}
		}
	}
	return false
}

func (r *ActorRepo) FindOrphans(_ context.Context) ([]*entity.Actor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orphans []*entity.Actor
	for _, actor := range r.s.Actors {
		if !r.s.isCast(actor.ID) {
			copied := *actor
			orphans = append(orphans, &copied)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Name < orphans[j].Name })
	return orphans, nil
}

func (r *ActorRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.s.Actors[id]; ok && !r.s.isCast(id) {
			delete(r.s.Actors, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ActorRepo) FindPendingImages(_ context.Context, ossPrefix string, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, actor := range r.s.Actors {
		if actor.TMDbID != nil && pending(actor.ProfileURL, ossPrefix) {
			ids = append(ids, actor.ID)
		}
	}
	return page(ids, limit, 0), nil
}

// ---------------------------------------------------------------- casts

type CastRepo struct{ s *Store }

func (r *CastRepo) Replace(_ context.Context, kind entity.MediaKind, mediaID uuid.UUID, entries []entity.CastEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return err
	}
	copied := make([]entity.CastEntry, len(entries))
	for i, entry := range entries {
		entry.MediaID = mediaID
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		copied[i] = entry
	}
	r.s.Casts[kind][mediaID] = copied
	return nil
}

func (r *CastRepo) FindByMedia(_ context.Context, kind entity.MediaKind, mediaID uuid.UUID) ([]*entity.CastMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var members []*entity.CastMember
	for _, entry := range r.s.Casts[kind][mediaID] {
		actor, ok := r.s.Actors[entry.ActorID]
		if !ok {
			continue
		}
		members = append(members, &entity.CastMember{
			ActorID:    actor.ID,
			Name:       actor.Name,
			ProfileURL: actor.ProfileURL,
			Character:  entry.Character,
			CastOrder:  entry.CastOrder,
		})
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].CastOrder < members[j].CastOrder })
	return members, nil
}

func (r *CastRepo) FindCredits(_ context.Context, kind entity.MediaKind, actorID uuid.UUID) ([]*entity.Credit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var credits []*entity.Credit
	for mediaID, entries := range r.s.Casts[kind] {
		for _, entry := range entries {
			if entry.ActorID != actorID {
				continue
			}
			credit := &entity.Credit{MediaID: mediaID, Character: entry.Character}
			if kind == entity.KindTV {
				if show, ok := r.s.TVShows[mediaID]; ok {
					credit.Title, credit.PosterURL, credit.Date = show.Name, show.PosterURL, show.FirstAirDate
				}
			} else if movie, ok := r.s.Movies[mediaID]; ok {
				credit.Title, credit.PosterURL, credit.Date = movie.Title, movie.PosterURL, movie.ReleaseDate
			}
			credits = append(credits, credit)
		}
	}
	return credits, nil
}
