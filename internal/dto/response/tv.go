package response

import (
	"time"

	"watch-list/internal/data/entity"
)

type TVShowResponse struct {
	ID               string    `json:"id"`
	TMDbID           *int64    `json:"tmdb_id,omitempty"`
	Name             string    `json:"name"`
	OriginalName     *string   `json:"original_name,omitempty"`
	Overview         *string   `json:"overview,omitempty"`
	FirstAirDate     *string   `json:"first_air_date,omitempty"`
	LastAirDate      *string   `json:"last_air_date,omitempty"`
	NumberOfSeasons  *int      `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes *int      `json:"number_of_episodes,omitempty"`
	Status           *string   `json:"status,omitempty"`
	Genres           []string  `json:"genres"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	Popularity       float64   `json:"popularity"`
	PosterURL        *string   `json:"poster_url,omitempty"`
	BackdropURL      *string   `json:"backdrop_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TVShowDetailResponse struct {
	TVShowResponse
	Cast    []CastResponse      `json:"cast"`
	Reviews ReviewStatsResponse `json:"reviews"`
}

func TVShowToResponse(show *entity.TVShow) TVShowResponse {
	return TVShowResponse{
		ID:               show.ID.String(),
		TMDbID:           show.TMDbID,
		Name:             show.Name,
		OriginalName:     show.OriginalName,
		Overview:         show.Overview,
		FirstAirDate:     formatDate(show.FirstAirDate),
		LastAirDate:      formatDate(show.LastAirDate),
		NumberOfSeasons:  show.NumberOfSeasons,
		NumberOfEpisodes: show.NumberOfEpisodes,
		Status:           show.Status,
		Genres:           nonNilGenres(show.Genres),
		VoteAverage:      show.VoteAverage,
		VoteCount:        show.VoteCount,
		Popularity:       show.Popularity,
		PosterURL:        show.PosterURL,
		BackdropURL:      show.BackdropURL,
		CreatedAt:        show.CreatedAt,
		UpdatedAt:        show.UpdatedAt,
	}
}

func TVShowsToResponse(shows []*entity.TVShow) []TVShowResponse {
	out := make([]TVShowResponse, 0, len(shows))
	for _, s := range shows {
		out = append(out, TVShowToResponse(s))
	}
	return out
}
