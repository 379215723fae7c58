package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/server/auth"
	"github.com/umardevX/ems-console/internal/server/database"
	"github.com/umardevX/ems-console/internal/server/middleware"
)

// ServiceName is reported by the health endpoint
const ServiceName = "ems-server"

// Auth routes allow this many attempts per client IP inside AuthRateWindow
const (
	AuthRateLimit  = 10
	AuthRateWindow = 15 * time.Minute
)

// Deps are the collaborators the router wires together
type Deps struct {
	Store          database.Store
	Auth           *auth.AuthService
	RateLimiter    *auth.RateLimiter
	Audit          auth.AuditLogger
	Logger         zerolog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
	Version        string
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewHealthHandler answers liveness probes and version checks
func NewHealthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: ServiceName,
			Version: version,
		})
	}
}

// NewRouter builds the full HTTP surface: health, sign-in, sign-up and the
// bearer protected employee collection
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	userByID := func(ctx context.Context, id string) (*auth.User, error) {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		return d.Store.UserByID(ctx, parsed)
	}

	limit := func(h http.Handler) http.Handler { return h }
	if d.RateLimiter != nil {
		limit = middleware.RateLimit(d.RateLimiter, AuthRateLimit, AuthRateWindow)
	}
	protect := middleware.RequireAuth(d.Auth, userByID)

	mux.Handle("GET /health", NewHealthHandler(d.Version))
	mux.Handle("POST /signin", limit(NewSignInHandler(d.Auth, d.Store.UserByEmail, d.Store.RecordLogin, d.RateLimiter, d.Audit)))
	mux.Handle("POST /signup", limit(NewSignUpHandler(d.Auth, d.Store.CreateUser, d.Audit)))

	emp := NewEmployeeHandlers(d.Store, d.Audit)
	mux.Handle("GET /employees", protect(http.HandlerFunc(emp.List)))
	mux.Handle("POST /employees", protect(http.HandlerFunc(emp.Create)))
	mux.Handle("PUT /employees/{id}", protect(http.HandlerFunc(emp.Update)))
	mux.Handle("DELETE /employees/{id}", protect(http.HandlerFunc(emp.Delete)))

	var h http.Handler = mux
	if d.MaxBodyBytes > 0 {
		h = middleware.MaxBodySize(d.MaxBodyBytes)(h)
	}
	h = middleware.CORS(d.AllowedOrigins)(h)
	return middleware.RequestLog(d.Logger)(h)
}
