package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/server/auth"
)

// RateLimitKey buckets attempts per route and client, so a burst of
// sign-ups does not lock the same address out of sign-in
func RateLimitKey(r *http.Request) string {
	return r.Method + " " + r.URL.Path + " " + GetClientIP(r)
}

// RateLimit rejects a client with 429 once it has made maxAttempts requests
// to the same route within window
func RateLimit(rl *auth.RateLimiter, maxAttempts int, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RateLimitKey(r)
			if err := rl.CheckLimit(key, maxAttempts, window); err != nil {
				zerolog.Ctx(r.Context()).Warn().
					Str("limit_key", key).
					Str("request_id", RequestIDFromContext(r.Context())).
					Int("max_attempts", maxAttempts).
					Dur("window", window).
					Msg("too many attempts")
				w.Header().Set("Retry-After", retryAfter)
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "Too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClientIP returns the first forwarded hop when the request came through
// a proxy, falling back to the socket address
func GetClientIP(r *http.Request) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-IP"} {
		first, _, _ := strings.Cut(r.Header.Get(h), ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
