package middleware

import (
	"net/http"
	"time"

	"watch-list/pkg/utils"

	"github.com/go-chi/httprate"
)

// RateLimitByIP caps requests per client address inside window. The key is
// the address resolved by ClientIP, never a raw forwarding header. Requests
// over the limit get 429 with the standard JSON envelope.
func RateLimitByIP(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return requestIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseJSON(w, http.StatusTooManyRequests, false, "Too many requests, try again later", nil, nil)
		}),
	)
}
