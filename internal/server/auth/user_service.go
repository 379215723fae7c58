package auth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/umardevX/ems-console/internal/forms"
)

// ValidateRegistration applies the same field rules as the console sign-up
// form. The returned error is a forms.FieldErrors.
func ValidateRegistration(username, email, password string) error {
	return forms.ValidateSignUp(username, email, password)
}

// NormalizeEmail folds an address for lookups and uniqueness checks
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a user record with a fresh identity
func (s *AuthService) NewUser(username, email, password string) (*User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}, nil
}
