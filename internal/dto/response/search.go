package response

type SearchAllResponse struct {
	Movies  []MovieResponse  `json:"movies"`
	TVShows []TVShowResponse `json:"tv_shows"`
	Actors  []ActorResponse  `json:"actors"`
}

type HomeResponse struct {
	TrendingMovies []MovieResponse  `json:"trending_movies"`
	TrendingTV     []TVShowResponse `json:"trending_tv"`
	LatestMovies   []MovieResponse  `json:"latest_movies"`
	LatestTV       []TVShowResponse `json:"latest_tv"`
}
