package usecase

import (
	"context"
	"testing"

	"watch-list/internal/data/entity"
	"watch-list/internal/dto/request"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMovie(env *testEnv, title string, popularity float64) *entity.Movie {
	movie := &entity.Movie{
		Base:       entity.Base{ID: uuid.New()},
		Title:      title,
		Popularity: popularity,
		Genres:     []string{"Drama"},
	}
	env.store.Movies[movie.ID] = movie
	return movie
}

func seedShow(env *testEnv, name string) *entity.TVShow {
	show := &entity.TVShow{Base: entity.Base{ID: uuid.New()}, Name: name, Genres: []string{"Comedy"}}
	env.store.TVShows[show.ID] = show
	return show
}

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")
	movie := seedMovie(env, "Heat", 10)
	ctx := context.Background()

	review, err := env.svc.Review.CreateReview(ctx, entity.KindMovie, movie.ID.String(), userID,
		&request.CreateReviewRequest{Rating: 8, Content: utils.StringPtr("Tense.")})
	require.NoError(t, err)
	assert.Equal(t, "Heat", review.MediaTitle)
	assert.Equal(t, "alice", review.Username)
	assert.Equal(t, 8, review.Rating)

	_, err = env.svc.Review.CreateReview(ctx, entity.KindMovie, movie.ID.String(), userID,
		&request.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrConflict)

	detail, err := env.svc.Movie.GetMovieByID(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Reviews.ReviewCount)
	assert.InDelta(t, 8.0, detail.Reviews.AverageRating, 0.001)
}

func TestCreateReview_Rejects(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")
	movie := seedMovie(env, "Heat", 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		kind    entity.MediaKind
		mediaID string
		rating  int
		wantErr error
	}{
		{name: "rating too high", kind: entity.KindMovie, mediaID: movie.ID.String(), rating: 11, wantErr: ErrInvalidInput},
		{name: "rating missing", kind: entity.KindMovie, mediaID: movie.ID.String(), rating: 0, wantErr: ErrInvalidInput},
		{name: "unknown kind", kind: "book", mediaID: movie.ID.String(), rating: 5, wantErr: ErrInvalidInput},
		{name: "movie id under tv", kind: entity.KindTV, mediaID: movie.ID.String(), rating: 5, wantErr: ErrNotFound},
		{name: "bad id", kind: entity.KindMovie, mediaID: "42", rating: 5, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Review.CreateReview(ctx, tt.kind, tt.mediaID, userID, &request.CreateReviewRequest{Rating: tt.rating})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteReview(t *testing.T) {
	env := newTestEnv(t)
	adminID := register(t, env, "admin")
	authorID := register(t, env, "author")
	otherID := register(t, env, "other")
	show := seedShow(env, "Fargo")
	ctx := context.Background()

	create := func() string {
		review, err := env.svc.Review.CreateReview(ctx, entity.KindTV, show.ID.String(), authorID,
			&request.CreateReviewRequest{Rating: 9})
		require.NoError(t, err)
		return review.ID
	}

	t.Run("stranger is forbidden", func(t *testing.T) {
		reviewID := create()
		err := env.svc.Review.DeleteReview(ctx, entity.KindTV, reviewID, otherID)
		assert.ErrorIs(t, err, ErrForbidden)
		require.NoError(t, env.svc.Review.DeleteReview(ctx, entity.KindTV, reviewID, authorID))
	})

	t.Run("author delete is not audited", func(t *testing.T) {
		before := len(env.store.Logs)
		reviewID := create()
		require.NoError(t, env.svc.Review.DeleteReview(ctx, entity.KindTV, reviewID, authorID))
		assert.Len(t, env.store.Logs, before)
	})

	t.Run("admin moderation is audited", func(t *testing.T) {
		before := len(env.store.Logs)
		reviewID := create()
		require.NoError(t, env.svc.Review.DeleteReview(ctx, entity.KindTV, reviewID, adminID))
		require.Len(t, env.store.Logs, before+1)
		entry := env.store.Logs[before]
		assert.Equal(t, entity.ResourceReview, entry.ResourceType)
		assert.Equal(t, "author", entry.Details["author"])
	})

	t.Run("demoted admin loses moderation", func(t *testing.T) {
		reviewID := create()
		admin := env.store.Users[uuid.MustParse(adminID)]
		admin.Role = entity.RoleUser
		defer func() { admin.Role = entity.RoleAdmin }()

		err := env.svc.Review.DeleteReview(ctx, entity.KindTV, reviewID, adminID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("wrong kind is not found", func(t *testing.T) {
		reviewID := create()
		err := env.svc.Review.DeleteReview(ctx, entity.KindMovie, reviewID, authorID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetRecentReviews(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")
	movie := seedMovie(env, "Heat", 10)
	show := seedShow(env, "Fargo")
	ctx := context.Background()

	_, err := env.svc.Review.CreateReview(ctx, entity.KindMovie, movie.ID.String(), userID, &request.CreateReviewRequest{Rating: 7})
	require.NoError(t, err)
	_, err = env.svc.Review.CreateReview(ctx, entity.KindTV, show.ID.String(), userID, &request.CreateReviewRequest{Rating: 6})
	require.NoError(t, err)

	all, err := env.svc.Review.GetRecentReviews(ctx, &request.ReviewListRequest{PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10}})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)

	tvOnly, err := env.svc.Review.GetRecentReviews(ctx, &request.ReviewListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		Kind:             "tv",
	})
	require.NoError(t, err)
	require.Len(t, tvOnly.Data, 1)
	assert.Equal(t, "Fargo", tvOnly.Data[0].MediaTitle)
}
