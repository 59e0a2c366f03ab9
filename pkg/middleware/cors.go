package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// CORS allows the configured front-end origins. Credentials are allowed so
// the session cookie travels with cross-origin requests.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowCredentials := true
	if len(origins) == 0 {
		origins = []string{"*"}
		allowCredentials = false
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: allowCredentials,
		MaxAge:           int((10 * time.Minute).Seconds()),
	})
}
