package response

import (
	"time"

	"watch-list/internal/data/entity"
)

type TMDbSearchItem struct {
	TMDbID        int64   `json:"tmdb_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	Date          string  `json:"date,omitempty"`
	PosterURL     *string `json:"poster_url,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
	Imported      bool    `json:"imported"`
	LocalID       *string `json:"local_id,omitempty"`
}

type TMDbSearchResponse struct {
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
	Results      []TMDbSearchItem `json:"results"`
}

type ImportResponse struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	TMDbID    int64    `json:"tmdb_id"`
	Title     string   `json:"title"`
	Created   bool     `json:"created"`
	CastCount int      `json:"cast_count"`
	Images    []string `json:"images,omitempty"`
}

type ImageResponse struct {
	ResourceType string  `json:"resource_type"`
	ResourceID   string  `json:"resource_id"`
	Kind         string  `json:"kind"`
	URL          *string `json:"url"`
}

type ImageSyncResponse struct {
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Synced       map[string]string `json:"synced"`
	Failed       map[string]string `json:"failed,omitempty"`
}

type OperationLogResponse struct {
	ID           string         `json:"id"`
	UserID       *string        `json:"user_id,omitempty"`
	Username     string         `json:"username"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *string        `json:"resource_id,omitempty"`
	ResourceName *string        `json:"resource_name,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    *string        `json:"ip_address,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type DashboardResponse struct {
	Movies         int64 `json:"movies"`
	TVShows        int64 `json:"tv_shows"`
	Actors         int64 `json:"actors"`
	Users          int64 `json:"users"`
	Reviews        int64 `json:"reviews"`
	LogsLast24h    int64 `json:"logs_last_24h"`
	ImportsLast24h int64 `json:"imports_last_24h"`
}

func OperationLogToResponse(entry *entity.OperationLog) OperationLogResponse {
	resp := OperationLogResponse{
		ID:           entry.ID.String(),
		Username:     entry.Username,
		Action:       string(entry.Action),
		ResourceType: string(entry.ResourceType),
		ResourceName: entry.ResourceName,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.UserID != nil {
		id := entry.UserID.String()
		resp.UserID = &id
	}
	if entry.ResourceID != nil {
		id := entry.ResourceID.String()
		resp.ResourceID = &id
	}
	return resp
}

func DashboardToResponse(stats *entity.DashboardStats) DashboardResponse {
	return DashboardResponse{
		Movies:         stats.Movies,
		TVShows:        stats.TVShows,
		Actors:         stats.Actors,
		Users:          stats.Users,
		Reviews:        stats.Reviews,
		LogsLast24h:    stats.RecentLogs,
		ImportsLast24h: stats.ImportedLast,
	}
}
