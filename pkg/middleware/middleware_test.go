package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/data/repository/repotest"
	"watch-list/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"
	cookieName = "token"
)

func newJWT(t *testing.T) *utils.JWTManager {
	t.Helper()
	manager, err := utils.NewJWTManager(utils.JWTConfig{Secret: testSecret, ExpiryHours: 1})
	require.NoError(t, err)
	return manager
}

// whoami echoes the user the Auth middleware stored in the context.
func whoami(w http.ResponseWriter, r *http.Request) {
	username, _ := utils.GetUsernameFromContext(r.Context())
	role, _ := utils.GetRoleFromContext(r.Context())
	utils.ResponseSuccess(w, "ok", map[string]string{"username": username, "role": role})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuth(t *testing.T) {
	jwt := newJWT(t)
	token, _, err := jwt.GenerateToken(uuid.New(), "alice", "user")
	require.NoError(t, err)

	handler := Auth(jwt, cookieName, zap.NewNop())(http.HandlerFunc(whoami))

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "bearer header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "lowercase scheme",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "session cookie",
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookieName, Value: token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			prepare:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "tampered token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token+"x") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Success)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, map[string]any{"username": "alice", "role": "user"}, resp.Data)
			}
		})
	}
}

func TestAdmin_ChecksStoredRole(t *testing.T) {
	jwt := newJWT(t)
	store := repotest.NewStore()
	repo := repotest.NewRepository(store)

	admin := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "root", Role: entity.RoleAdmin}
	demoted := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "former", Role: entity.RoleUser}
	store.Users[admin.ID] = admin
	store.Users[demoted.ID] = demoted

	handler := Auth(jwt, cookieName, zap.NewNop())(Admin(repo.User, zap.NewNop())(http.HandlerFunc(whoami)))

	call := func(user *entity.User, claimedRole string) int {
		token, _, err := jwt.GenerateToken(user.ID, user.Username, claimedRole)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(admin, "admin"))
	// the token still claims admin but the row says otherwise
	assert.Equal(t, http.StatusForbidden, call(demoted, "admin"))

	ghost := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: "ghost"}
	assert.Equal(t, http.StatusForbidden, call(ghost, "admin"))
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestClientIP(t *testing.T) {
	trusted, err := utils.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	var seen string
	handler := ClientIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetClientIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.4", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.50:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.50", seen)
}

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote + ":1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("192.0.2.1", "198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, send("192.0.2.1", "198.51.100.2"))
	// a fresh forwarding header does not buy a fresh bucket
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1", "198.51.100.3"))
	assert.Equal(t, http.StatusNoContent, send("192.0.2.2", "198.51.100.1"))
}

func TestRateLimitByIP_UsesResolvedAddress(t *testing.T) {
	trusted, err := utils.ParseTrustedProxies([]string{"10.0.0.1"})
	require.NoError(t, err)

	handler := ClientIP(trusted)(RateLimitByIP(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// behind the proxy each real client gets its own bucket
	assert.Equal(t, http.StatusNoContent, send("198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, send("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics("watchlist")

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", metrics.Handler())

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/movies/"+id, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `watchlist_http_requests_total{method="GET",route="/api/movies/{id}",status="404"} 2`)
	assert.Contains(t, body, "watchlist_http_request_duration_seconds_bucket")
	assert.False(t, strings.Contains(body, "/api/movies/a"))
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/movies", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
