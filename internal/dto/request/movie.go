package request

type MediaListRequest struct {
	PaginatedRequest
	Genre string `json:"genre" validate:"max=50"`
	Year  int    `json:"year" validate:"omitempty,min=1870,max=2100"`
	Sort  string `json:"sort" validate:"omitempty,oneof=popularity release_date vote_average created_at"`
}

// MovieUpdateRequest is a partial update; nil fields are left untouched.
type MovieUpdateRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Overview    *string  `json:"overview,omitempty" validate:"omitempty,max=5000"`
	Tagline     *string  `json:"tagline,omitempty" validate:"omitempty,max=500"`
	ReleaseDate *string  `json:"release_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Runtime     *int     `json:"runtime,omitempty" validate:"omitempty,min=0,max=1000"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,max=50"`
	Genres      []string `json:"genres,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type TVUpdateRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Overview         *string  `json:"overview,omitempty" validate:"omitempty,max=5000"`
	FirstAirDate     *string  `json:"first_air_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastAirDate      *string  `json:"last_air_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumberOfSeasons  *int     `json:"number_of_seasons,omitempty" validate:"omitempty,min=0,max=1000"`
	NumberOfEpisodes *int     `json:"number_of_episodes,omitempty" validate:"omitempty,min=0,max=100000"`
	Status           *string  `json:"status,omitempty" validate:"omitempty,max=50"`
	Genres           []string `json:"genres,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type ActorUpdateRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Biography    *string  `json:"biography,omitempty" validate:"omitempty,max=20000"`
	Birthday     *string  `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth *string  `json:"place_of_birth,omitempty" validate:"omitempty,max=255"`
	Popularity   *float64 `json:"popularity,omitempty" validate:"omitempty,min=0"`
}
