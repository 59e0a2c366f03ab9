package usecase

import (
	"context"
	"testing"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/internal/tmdb"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstPage = request.PaginatedRequest{Page: 1, PerPage: 20}

func TestGetMovies_FiltersAndSorts(t *testing.T) {
	env := newTestEnv(t)
	seedMovie(env, "Low", 1)
	high := seedMovie(env, "High", 99)
	released := time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)
	high.ReleaseDate = &released
	comedy := seedMovie(env, "Comedy", 50)
	comedy.Genres = []string{"Comedy"}
	ctx := context.Background()

	page, err := env.svc.Movie.GetMovies(ctx, &request.MediaListRequest{PaginatedRequest: firstPage})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "High", page.Data[0].Title)

	page, err = env.svc.Movie.GetMovies(ctx, &request.MediaListRequest{PaginatedRequest: firstPage, Genre: "Drama"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	page, err = env.svc.Movie.GetMovies(ctx, &request.MediaListRequest{PaginatedRequest: firstPage, Year: 1995})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Data[0].ReleaseDate)
	assert.Equal(t, "1995-12-15", *page.Data[0].ReleaseDate)

	_, err = env.svc.Movie.GetMovies(ctx, &request.MediaListRequest{PaginatedRequest: firstPage, Sort: "random"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateMovie_PartialFields(t *testing.T) {
	env := newTestEnv(t)
	movie := seedMovie(env, "Heat", 1)
	movie.Overview = utils.StringPtr("original overview")
	ctx := context.Background()

	resp, err := env.svc.Movie.UpdateMovie(ctx, movie.ID.String(), &request.MovieUpdateRequest{
		Title:       utils.StringPtr("Heat (1995)"),
		ReleaseDate: utils.StringPtr("1995-12-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Heat (1995)", resp.Title)
	assert.Equal(t, "original overview", *resp.Overview)

	require.Len(t, env.store.Logs, 1)
	assert.Equal(t, []string{"title", "release_date"}, env.store.Logs[0].Details["fields"])

	_, err = env.svc.Movie.UpdateMovie(ctx, movie.ID.String(), &request.MovieUpdateRequest{ReleaseDate: utils.StringPtr("15/12/1995")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.Movie.UpdateMovie(ctx, uuid.NewString(), &request.MovieUpdateRequest{Title: utils.StringPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMovie_RemovesImagesAndReviews(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")
	movie := seedMovie(env, "Heat", 1)
	ctx := context.Background()

	uploaded, err := env.svc.Image.Upload(ctx, "movie", movie.ID.String(), "poster", []byte("p"))
	require.NoError(t, err)
	_, err = env.svc.Review.CreateReview(ctx, entity.KindMovie, movie.ID.String(), userID, &request.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, env.svc.Movie.DeleteMovie(ctx, movie.ID.String()))
	assert.Empty(t, env.store.Movies)
	assert.Empty(t, env.store.Reviews)

	key, _ := env.objects.KeyFromURL(*uploaded.URL)
	assert.Contains(t, env.objects.deleted, key)

	assert.ErrorIs(t, env.svc.Movie.DeleteMovie(ctx, movie.ID.String()), ErrNotFound)
}

func TestTVShow_UpdateAndDetail(t *testing.T) {
	env := newTestEnv(t)
	show := seedShow(env, "Fargo")
	ctx := context.Background()

	seasons := 5
	resp, err := env.svc.TV.UpdateShow(ctx, show.ID.String(), &request.TVUpdateRequest{
		NumberOfSeasons: &seasons,
		Genres:          []string{"Crime", "Drama"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Crime", "Drama"}, resp.Genres)

	detail, err := env.svc.TV.GetShowByID(ctx, show.ID.String())
	require.NoError(t, err)
	require.NotNil(t, detail.NumberOfSeasons)
	assert.Equal(t, 5, *detail.NumberOfSeasons)
	assert.Empty(t, detail.Cast)

	require.NoError(t, env.svc.TV.DeleteShow(ctx, show.ID.String()))
	_, err = env.svc.TV.GetShowByID(ctx, show.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActor_DetailAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.tmdb.movies[949] = heatFromTMDb()
	ctx := context.Background()

	imported, err := env.svc.Import.ImportMovie(ctx, &request.ImportRequest{TMDbID: 949})
	require.NoError(t, err)

	var pacino *entity.Actor
	for _, actor := range env.store.Actors {
		if actor.Name == "Al Pacino" {
			pacino = actor
		}
	}
	require.NotNil(t, pacino)

	detail, err := env.svc.Actor.GetActor(ctx, pacino.ID.String())
	require.NoError(t, err)
	require.Len(t, detail.MovieCredits, 1)
	assert.Equal(t, imported.ID, detail.MovieCredits[0].ID)
	assert.Equal(t, "Vincent Hanna", detail.MovieCredits[0].Character)
	assert.Empty(t, detail.TVCredits)

	env.tmdb.people[1158] = &tmdb.Person{
		ID:          1158,
		Name:        "Al Pacino",
		Biography:   "Actor from New York.",
		ProfilePath: "/newer-pacino.jpg",
	}
	refreshed, err := env.svc.Actor.RefreshActor(ctx, pacino.ID.String())
	require.NoError(t, err)
	require.NotNil(t, refreshed.Biography)
	assert.Equal(t, "Actor from New York.", *refreshed.Biography)
	// the stored profile survives a refresh
	assert.Equal(t, pacino.ProfileURL, refreshed.ProfileURL)

	require.NoError(t, env.svc.Actor.DeleteActor(ctx, pacino.ID.String()))
	movieDetail, err := env.svc.Movie.GetMovieByID(ctx, imported.ID)
	require.NoError(t, err)
	assert.Len(t, movieDetail.Cast, 1)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	seedMovie(env, "Heat", 10)
	seedMovie(env, "Heathers", 5)
	seedShow(env, "The Heat Is On")
	env.store.Actors[uuid.New()] = &entity.Actor{Name: "Heath Ledger"}
	ctx := context.Background()

	all, err := env.svc.Search.Search(ctx, &request.SearchRequest{PaginatedRequest: firstPage, Query: "  heat "})
	require.NoError(t, err)
	grouped, ok := all.(*response.SearchAllResponse)
	require.True(t, ok)
	assert.Len(t, grouped.Movies, 2)
	assert.Len(t, grouped.TVShows, 1)
	assert.Len(t, grouped.Actors, 1)

	movies, err := env.svc.Search.Search(ctx, &request.SearchRequest{PaginatedRequest: firstPage, Query: "heath", Type: "movie"})
	require.NoError(t, err)
	paged, ok := movies.(*response.PaginatedResponse[response.MovieResponse])
	require.True(t, ok)
	assert.Equal(t, int64(1), paged.Pagination.Total)

	_, err = env.svc.Search.Search(ctx, &request.SearchRequest{PaginatedRequest: firstPage, Query: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenresAndHome(t *testing.T) {
	env := newTestEnv(t)
	seedMovie(env, "Heat", 10)
	seedShow(env, "Fargo")
	ctx := context.Background()

	genres, err := env.svc.Search.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy", "Drama"}, genres)

	home, err := env.svc.Search.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.TrendingMovies, 1)
	assert.Len(t, home.LatestTV, 1)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.tmdb.movies[949] = heatFromTMDb()
	register(t, env, "alice")
	_, err := env.svc.Import.ImportMovie(context.Background(), &request.ImportRequest{TMDbID: 949})
	require.NoError(t, err)

	stats, err := env.svc.Stats.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Movies)
	assert.Equal(t, int64(2), stats.Actors)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(1), stats.ImportsLast24h)
}
