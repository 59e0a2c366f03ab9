package wire

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository/repotest"
	"watch-list/internal/tmdb"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const publicURL = "https://cdn.example.com/"

type offlineTMDb struct{}

func (offlineTMDb) Configured() bool { return true }
func (offlineTMDb) SearchMovies(context.Context, string, int) (*tmdb.SearchPage, error) {
	return &tmdb.SearchPage{Page: 1}, nil
}
func (offlineTMDb) SearchTV(context.Context, string, int) (*tmdb.SearchPage, error) {
	return &tmdb.SearchPage{Page: 1}, nil
}
func (offlineTMDb) GetMovie(context.Context, int64) (*tmdb.Movie, error)   { return nil, tmdb.ErrNotFound }
func (offlineTMDb) GetTV(context.Context, int64) (*tmdb.TVShow, error)     { return nil, tmdb.ErrNotFound }
func (offlineTMDb) GetPerson(context.Context, int64) (*tmdb.Person, error) { return nil, tmdb.ErrNotFound }
func (offlineTMDb) ImageURL(string) *string                                { return nil }
func (offlineTMDb) DownloadImage(context.Context, string) ([]byte, error) {
	return nil, tmdb.ErrNotFound
}

type memoryObjects struct{ objects map[string][]byte }

func (m *memoryObjects) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return publicURL + key, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, publicURL) {
		return "", false
	}
	return strings.TrimPrefix(url, publicURL), true
}

type passthrough struct{}

func (passthrough) Process(data []byte, _ string) ([]byte, error) { return data, nil }

type testApp struct {
	store   *repotest.Store
	objects *memoryObjects
	router  http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	config := &utils.Config{
		App: utils.AppConfig{CORSOrigins: []string{"http://localhost:3000"}},
		JWT: utils.JWTConfig{
			Secret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
			ExpiryHours: 1,
			CookieName:  "token",
		},
		TMDb:  utils.TMDbConfig{CastLimit: 5},
		Image: utils.ImageConfig{MaxUploadMB: 1},
	}

	store := repotest.NewStore()
	objects := &memoryObjects{objects: map[string][]byte{}}
	deps := usecase.Deps{TMDb: offlineTMDb{}, Storage: objects, Images: passthrough{}}

	app, err := Wiring(repotest.NewRepository(store), deps, config, zap.NewNop())
	require.NoError(t, err)

	return &testApp{store: store, objects: objects, router: app.Router}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// register signs a user up and returns the session token.
func (a *testApp) register(t *testing.T, username string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &auth))
	return auth.Token
}

func (a *testApp) seedMovie(title string) *entity.Movie {
	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: title, Genres: []string{"Drama"}}
	a.store.Movies[movie.ID] = movie
	return movie
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)

	app.do(t, http.MethodGet, "/api/movies", "", nil)

	rec = app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `watchlist_http_requests_total{method="GET",route="/api/movies",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestRegisterSetsCookieAndMe(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	app.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var user struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(decode(t, me).Data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "admin", user.Role)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "a",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "Username")
	assert.Contains(t, env.Errors, "Email")
	assert.Contains(t, env.Errors, "Password")
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec).Message)
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t)

	var last int
	for i := 0; i < authRateLimit+1; i++ {
		last = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "ghost",
			"password": "password123",
		}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestLoginRateLimit_IgnoresForgedForwardedFor(t *testing.T) {
	app := newTestApp(t)

	limited := 0
	for i := 0; i < 3*authRateLimit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"ghost","password":"password123"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))

		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 2*authRateLimit, limited)
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "root")
	user := app.register(t, "bob")

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/admin/stats", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/admin/stats", user, nil).Code)

	rec := app.do(t, http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Users int64 `json:"users"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
	assert.EqualValues(t, 2, stats.Users)
}

func TestMovieRoutes(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "root")
	movie := app.seedMovie("Heat")

	rec := app.do(t, http.MethodGet, "/api/movies?page=1&per_page=500", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Total   int64 `json:"total"`
			PerPage int   `json:"per_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Pagination.Total)
	assert.Equal(t, 100, page.Pagination.PerPage)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/movies/"+movie.ID.String(), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/movies/"+uuid.NewString(), "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/movies/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/movies?sort=random", "", nil).Code)

	rec = app.do(t, http.MethodPut, "/api/admin/movies/"+movie.ID.String(), admin, map[string]string{"title": "Heat (1995)"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Heat (1995)", app.store.Movies[movie.ID].Title)

	rec = app.do(t, http.MethodDelete, "/api/admin/movies/"+movie.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, app.store.Movies)
}

func TestReviewRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "root")
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")
	movie := app.seedMovie("Heat")
	reviewsPath := "/api/movies/" + movie.ID.String() + "/reviews"

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, reviewsPath, "", map[string]any{"rating": 8}).Code)

	rec := app.do(t, http.MethodPost, reviewsPath, alice, map[string]any{"rating": 8, "content": "Tense."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var review struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &review))

	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, reviewsPath, alice, map[string]any{"rating": 9}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, reviewsPath, bob, map[string]any{"rating": 11}).Code)

	rec = app.do(t, http.MethodGet, reviewsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	deletePath := "/api/reviews/movie/" + review.ID
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, deletePath, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/api/reviews/book/"+review.ID, alice, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, deletePath, alice, nil).Code)
	assert.Empty(t, app.store.Reviews)
}

func TestReviewModeration_DemotedAdmin(t *testing.T) {
	app := newTestApp(t)
	root := app.register(t, "root")
	alice := app.register(t, "alice")
	bobRegistered := app.register(t, "bob")
	movie := app.seedMovie("Heat")

	var bob struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, app.do(t, http.MethodGet, "/api/auth/me", bobRegistered, nil)).Data, &bob))

	setRole := func(role string) {
		rec := app.do(t, http.MethodPut, "/api/admin/users/"+bob.ID+"/role", root, map[string]string{"role": role})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// bob logs in while promoted so his token carries the admin role
	setRole("admin")
	rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "bob", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))
	setRole("user")

	rec = app.do(t, http.MethodPost, "/api/movies/"+movie.ID.String()+"/reviews", alice, map[string]any{"rating": 7})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var review struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &review))

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/admin/stats", login.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, "/api/reviews/movie/"+review.ID, login.Token, nil).Code)
	assert.Len(t, app.store.Reviews, 1)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/reviews/movie/"+review.ID, root, nil).Code)
}

func multipartBody(t *testing.T, field string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "poster.jpg")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestImageUpload(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "root")
	movie := app.seedMovie("Heat")
	path := fmt.Sprintf("/api/admin/images/movie/%s/poster", movie.ID)

	upload := func(field string, payload []byte) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, field, payload)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("file", []byte("jpeg bytes"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, app.store.Movies[movie.ID].PosterURL)
	assert.True(t, strings.HasPrefix(*app.store.Movies[movie.ID].PosterURL, publicURL))
	assert.Len(t, app.objects.objects, 1)

	assert.Equal(t, http.StatusBadRequest, upload("image", []byte("jpeg bytes")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload("file", bytes.Repeat([]byte{'x'}, 3<<19)).Code)

	rec = app.do(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, app.store.Movies[movie.ID].PosterURL)
	assert.Empty(t, app.objects.objects)
}

func TestOperationLogRoutes(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "root")
	user := app.register(t, "bob")

	var bob struct {
		ID string `json:"id"`
	}
	me := app.do(t, http.MethodGet, "/api/auth/me", user, nil)
	require.NoError(t, json.Unmarshal(decode(t, me).Data, &bob))

	rec := app.do(t, http.MethodPut, "/api/admin/users/"+bob.ID+"/role", admin, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/admin/logs?action=role_change", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs struct {
		Data []struct {
			ID     string `json:"id"`
			Action string `json:"action"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &logs))
	require.Len(t, logs.Data, 1)
	assert.Equal(t, "role_change", logs.Data[0].Action)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/admin/logs/"+logs.Data[0].ID, admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/admin/logs?action=explode", admin, nil).Code)
}

func TestSearchRoutes(t *testing.T) {
	app := newTestApp(t)
	app.seedMovie("Heat")

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/search?q=", "", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/search?q=heat", "", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/search?q=heat&type=movie", "", nil).Code)

	rec := app.do(t, http.MethodGet, "/api/genres", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var genres []string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &genres))
	assert.Equal(t, []string{"Drama"}, genres)
}
