package utils

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email  string `validate:"required,email"`
		Rating int    `validate:"min=1,max=10"`
		Kind   string `validate:"oneof=movie tv"`
	}

	errs := ValidateStruct(payload{Email: "nope", Rating: 11, Kind: "book"})
	require.Len(t, errs, 3)
	assert.Equal(t, "Invalid email format", errs["Email"])
	assert.Equal(t, "Maximum value is 10", errs["Rating"])
	assert.Equal(t, "Must be one of: movie, tv", errs["Kind"])

	assert.Equal(t, "Email: Invalid email format; Kind: Must be one of: movie, tv; Rating: Maximum value is 10",
		FormatValidationErrors(errs))

	assert.Nil(t, ValidateStruct(payload{Email: "a@b.co", Rating: 5, Kind: "tv"}))
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateOffset(0, 10))
	assert.Equal(t, 20, CalculateOffset(3, 10))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 1, ParseInt("-3", 1))
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{"direct", "203.0.113.9:5555", "", "", "203.0.113.9"},
		{"untrusted peer cannot forge forwarded for", "203.0.113.9:5555", "198.51.100.1", "", "203.0.113.9"},
		{"untrusted peer cannot forge real ip", "203.0.113.9:5555", "", "198.51.100.1", "203.0.113.9"},
		{"trusted proxy", "10.0.0.1:5555", "198.51.100.1", "", "198.51.100.1"},
		{"rightmost untrusted hop wins", "10.0.0.1:5555", "1.1.1.1, 198.51.100.1, 10.2.3.4", "", "198.51.100.1"},
		{"bare address entry", "192.168.1.1:80", "198.51.100.7", "", "198.51.100.7"},
		{"trusted proxy real ip", "10.0.0.1:5555", "", "172.16.0.2", "172.16.0.2"},
		{"garbage header falls back to peer", "10.0.0.1:5555", "not-an-ip", "", "10.0.0.1"},
		{"only trusted hops", "10.0.0.1:5555", "10.9.9.9, 10.0.0.2", "", "10.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, trusted.ClientIP(r))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1"})
	require.NoError(t, err)
	assert.Len(t, proxies, 2)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)

	var none TrustedProxies
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "192.0.2.1", none.ClientIP(r))
}

func TestResponseJSON(t *testing.T) {
	w := httptest.NewRecorder()
	ResponseConflict(w, "already reviewed")

	assert.Equal(t, 409, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"already reviewed"}`, w.Body.String())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		Name:     "watchlist",
		User:     "watch list",
		Password: `p@ss word'"/?`,
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	parsed, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db.internal:5433", parsed.Host)
	assert.Equal(t, "/watchlist", parsed.Path)
	assert.Equal(t, "watch list", parsed.User.Username())
	password, ok := parsed.User.Password()
	require.True(t, ok)
	assert.Equal(t, `p@ss word'"/?`, password)
	assert.Equal(t, "require", parsed.Query().Get("sslmode"))

	_, err = pgconn.ParseConfig(dsn)
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Name: "watchlist", User: "watchlist"},
		JWT:      JWTConfig{Secret: testSecret, ExpiryHours: 24},
		Image:    ImageConfig{Quality: 80},
	}
	assert.NoError(t, cfg.Validate())

	cfg.JWT.Secret = ""
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET is required")

	cfg.JWT.Secret = "short"
	assert.Error(t, cfg.Validate())
}
