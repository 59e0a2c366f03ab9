package response

import (
	"time"

	"watch-list/internal/data/entity"
)

type ReviewResponse struct {
	ID         string           `json:"id"`
	Kind       entity.MediaKind `json:"kind"`
	MediaID    string           `json:"media_id"`
	MediaTitle string           `json:"media_title,omitempty"`
	UserID     string           `json:"user_id"`
	Username   string           `json:"username,omitempty"`
	Rating     int              `json:"rating"`
	Content    *string          `json:"content,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type ReviewStatsResponse struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID.String(),
		Kind:       review.Kind,
		MediaID:    review.MediaID.String(),
		MediaTitle: review.MediaTitle,
		UserID:     review.UserID.String(),
		Username:   review.Username,
		Rating:     review.Rating,
		Content:    review.Content,
		CreatedAt:  review.CreatedAt,
	}
}

func ReviewsToResponse(reviews []*entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewToResponse(r))
	}
	return out
}

func StatsToResponse(stats *entity.ReviewStats) ReviewStatsResponse {
	if stats == nil {
		return ReviewStatsResponse{}
	}
	return ReviewStatsResponse{
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
	}
}
