package middleware

import (
	"net/http"

	"watch-list/pkg/utils"
)

// ClientIP records the caller address for rate limits, request logs and
// operation logs. Forwarding headers count only from trusted proxies.
func ClientIP(trusted utils.TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := utils.SetClientIPContext(r.Context(), trusted.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestIP prefers the address resolved by ClientIP and falls back to the
// socket peer.
func requestIP(r *http.Request) string {
	if ip, ok := utils.GetClientIPFromContext(r.Context()); ok && ip != "" {
		return ip
	}
	return utils.RemoteIP(r)
}
