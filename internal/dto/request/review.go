package request

type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=10"`
	Content *string `json:"content,omitempty" validate:"omitempty,max=2000"`
}

type ReviewListRequest struct {
	PaginatedRequest
	Kind string `json:"kind" validate:"omitempty,oneof=movie tv"`
}
