package request

type SearchRequest struct {
	PaginatedRequest
	Query string `json:"q" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"omitempty,oneof=all movie tv actor"`
}

type TMDbSearchRequest struct {
	Query string `json:"q" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"required,oneof=movie tv"`
	Page  int    `json:"page" validate:"min=1,max=500"`
}

type ImportRequest struct {
	TMDbID     int64 `json:"tmdb_id" validate:"required,min=1"`
	WithImages bool  `json:"with_images"`
}
