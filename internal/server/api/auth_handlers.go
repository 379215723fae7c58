package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/forms"
	"github.com/umardevX/ems-console/internal/server/auth"
	"github.com/umardevX/ems-console/internal/server/database"
	"github.com/umardevX/ems-console/internal/server/middleware"
)

// UserByEmailFunc is a function that retrieves a user by email
type UserByEmailFunc func(ctx context.Context, email string) (*auth.User, error)

// RecordLoginFunc stamps a successful sign-in
type RecordLoginFunc func(ctx context.Context, id uuid.UUID) error

// CreateUserFunc stores a new account. It returns an error wrapping
// database.ErrDuplicateEmail when the address is already registered.
type CreateUserFunc func(ctx context.Context, u *auth.User) error

// SignInRequest represents the sign-in request body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse represents the sign-in response body
type SignInResponse struct {
	Token string `json:"token"`
}

// SignUpRequest represents the sign-up request body
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResponse represents the sign-up response body
type SignUpResponse struct {
	Message string `json:"message"`
}

// NewSignInHandler creates the sign-in handler.
// If rateLimiter is non-nil, the rate limit for the client IP is reset on success.
// If auditLogger is non-nil, attempts (success and failure) are audit-logged.
func NewSignInHandler(
	authService *auth.AuthService,
	userByEmail UserByEmailFunc,
	recordLogin RecordLoginFunc,
	rateLimiter *auth.RateLimiter,
	auditLogger auth.AuditLogger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignInRequest
		if !decodeBody(w, r, &req) {
			return
		}

		clientIP := middleware.GetClientIP(r)
		fail := func(userID *uuid.UUID) {
			if auditLogger != nil {
				_ = auditLogger.Log(auth.CreateSignInAuditLog(false, userID, req.Email, clientIP, r.UserAgent()))
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid credentials",
			})
		}

		user, err := userByEmail(r.Context(), req.Email)
		if err != nil || user == nil {
			fail(nil)
			return
		}

		if err := authService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
			fail(&user.ID)
			return
		}

		token, err := authService.GenerateAccessToken(user)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to sign access token")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to generate access token",
			})
			return
		}

		if recordLogin != nil {
			if err := recordLogin(r.Context(), user.ID); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record sign-in")
			}
		}

		if rateLimiter != nil {
			rateLimiter.ResetLimit(middleware.RateLimitKey(r))
		}

		if auditLogger != nil {
			_ = auditLogger.Log(auth.CreateSignInAuditLog(true, &user.ID, user.Email, clientIP, r.UserAgent()))
		}

		writeJSON(w, http.StatusOK, SignInResponse{Token: token})
	}
}

// NewSignUpHandler creates the registration handler. Field rules match the
// console's sign-up form.
func NewSignUpHandler(
	authService *auth.AuthService,
	createUser CreateUserFunc,
	auditLogger auth.AuditLogger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignUpRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := auth.ValidateRegistration(req.Username, req.Email, req.Password); err != nil {
			var fe forms.FieldErrors
			if errors.As(err, &fe) {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{
					"error":  "Validation failed",
					"fields": fe,
				})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		user, err := authService.NewUser(req.Username, req.Email, req.Password)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to hash password")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to create user",
			})
			return
		}

		if err := createUser(r.Context(), user); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				writeJSON(w, http.StatusConflict, map[string]string{
					"error": "Email is already registered",
				})
				return
			}
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to store user")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to create user",
			})
			return
		}

		if auditLogger != nil {
			_ = auditLogger.Log(auth.CreateSignUpAuditLog(user, middleware.GetClientIP(r), r.UserAgent()))
		}

		writeJSON(w, http.StatusOK, SignUpResponse{Message: "User registered successfully"})
	}
}

// decodeBody reads a JSON request body into v, answering 413 or 400 and
// returning false when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if middleware.HandleMaxBytesError(w, err) {
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
		return false
	}
	return true
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Ignore error - response already started
}
