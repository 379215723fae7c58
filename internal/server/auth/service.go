package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an access token stays valid when no TTL is configured
const DefaultTokenTTL = time.Hour

// bcryptCost is the work factor for stored password hashes
const bcryptCost = 12

// ErrMissingClaim is returned when a signed token lacks a required claim
var ErrMissingClaim = errors.New("token is missing a required claim")

// AuthService handles authentication operations
type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService. A non-positive ttl means DefaultTokenTTL.
func NewAuthService(secretKey []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		secretKey: secretKey,
		ttl:       ttl,
		now:       time.Now,
	}
}

// TTL returns the lifetime of issued tokens
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// GenerateAccessToken generates a JWT access token for a user
func (s *AuthService) GenerateAccessToken(user *User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"email":    user.Email,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateAccessToken validates a JWT access token and returns the claims
func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claimsMap["sub"].(string)
	email, _ := claimsMap["email"].(string)
	if sub == "" || email == "" {
		return nil, ErrMissingClaim
	}
	username, _ := claimsMap["username"].(string)

	exp, err := claimsMap.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrMissingClaim
	}

	return &Claims{
		UserID:    sub,
		Email:     email,
		Username:  username,
		ExpiresAt: exp.Time,
	}, nil
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a password matches the hash
func (s *AuthService) VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
