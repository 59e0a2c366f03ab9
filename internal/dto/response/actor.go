package response

import (
	"time"

	"watch-list/internal/data/entity"
)

type ActorResponse struct {
	ID           string    `json:"id"`
	TMDbID       *int64    `json:"tmdb_id,omitempty"`
	Name         string    `json:"name"`
	Biography    *string   `json:"biography,omitempty"`
	Birthday     *string   `json:"birthday,omitempty"`
	PlaceOfBirth *string   `json:"place_of_birth,omitempty"`
	ProfileURL   *string   `json:"profile_url,omitempty"`
	Popularity   float64   `json:"popularity"`
	CreatedAt    time.Time `json:"created_at"`
}

type ActorDetailResponse struct {
	ActorResponse
	MovieCredits []CreditResponse `json:"movie_credits"`
	TVCredits    []CreditResponse `json:"tv_credits"`
}

type CastResponse struct {
	ActorID    string  `json:"actor_id"`
	Name       string  `json:"name"`
	ProfileURL *string `json:"profile_url,omitempty"`
	Character  string  `json:"character"`
	Order      int     `json:"order"`
}

type CreditResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	PosterURL *string `json:"poster_url,omitempty"`
	Character string  `json:"character"`
	Date      *string `json:"date,omitempty"`
}

func ActorToResponse(actor *entity.Actor) ActorResponse {
	return ActorResponse{
		ID:           actor.ID.String(),
		TMDbID:       actor.TMDbID,
		Name:         actor.Name,
		Biography:    actor.Biography,
		Birthday:     formatDate(actor.Birthday),
		PlaceOfBirth: actor.PlaceOfBirth,
		ProfileURL:   actor.ProfileURL,
		Popularity:   actor.Popularity,
		CreatedAt:    actor.CreatedAt,
	}
}

func ActorsToResponse(actors []*entity.Actor) []ActorResponse {
	out := make([]ActorResponse, 0, len(actors))
	for _, a := range actors {
		out = append(out, ActorToResponse(a))
	}
	return out
}

func CastToResponse(members []*entity.CastMember) []CastResponse {
	out := make([]CastResponse, 0, len(members))
	for _, m := range members {
		out = append(out, CastResponse{
			ActorID:    m.ActorID.String(),
			Name:       m.Name,
			ProfileURL: m.ProfileURL,
			Character:  m.Character,
			Order:      m.CastOrder,
		})
	}
	return out
}

func CreditsToResponse(credits []*entity.Credit) []CreditResponse {
	out := make([]CreditResponse, 0, len(credits))
	for _, c := range credits {
		out = append(out, CreditResponse{
			ID:        c.MediaID.String(),
			Title:     c.Title,
			PosterURL: c.PosterURL,
			Character: c.Character,
			Date:      formatDate(c.Date),
		})
	}
	return out
}
