package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// MinSecretLength is the shortest JWT secret accepted outside development
const MinSecretLength = 32

// Known weak/default secrets that should never be used in production
var knownWeakSecrets = []string{
	"local-dev-jwt-secret-not-for-production",
	"changeme",
	"secret",
	"password",
	"test",
	"dev",
	"development",
}

// ValidateSecret validates the JWT secret meets security requirements.
// Weak secrets pass with a warning when isDev is set.
func ValidateSecret(secret string, isDev bool) error {
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// Weak secrets are checked before length so dev mode can accept them
	for _, weak := range knownWeakSecrets {
		if secret == weak {
			if isDev {
				log.Warn().Str("secret_prefix", secret[:min(8, len(secret))]).Msg("using a default JWT secret, not for production use")
				return nil
			}
			return fmt.Errorf("default/weak JWT secret not allowed in production environment")
		}
	}

	if len(secret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters (got %d)", MinSecretLength, len(secret))
	}

	return nil
}

// IsDevelopment reports whether an ENVIRONMENT value names development
func IsDevelopment(env string) bool {
	return env == "development" || env == "dev"
}

// IsDevelopmentMode checks ENVIRONMENT, then GO_ENV. Anything else is production.
func IsDevelopmentMode() bool {
	return IsDevelopment(os.Getenv("ENVIRONMENT")) || IsDevelopment(os.Getenv("GO_ENV"))
}
