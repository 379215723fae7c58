package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/umardevX/ems-console/internal/server/auth"
)

type contextKey int

const (
	userKey contextKey = iota
	requestIDKey
)

// UserGetter is a function that retrieves a user by ID
type UserGetter func(ctx context.Context, userID string) (*auth.User, error)

// RequireAuth is middleware that validates bearer tokens and attaches the
// user to the request context. Every rejection is a 401 so the console
// drops its session.
func RequireAuth(authService *auth.AuthService, userGetter UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Missing or invalid authorization header",
				})
				return
			}

			claims, err := authService.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid or expired token",
				})
				return
			}

			user, err := userGetter(r.Context(), claims.UserID)
			if err != nil || user == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "User not found",
				})
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by RequireAuth
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey).(*auth.User)
	return u, ok
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
