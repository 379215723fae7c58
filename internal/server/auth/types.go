package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a console account
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string
	Email     string
	Username  string
	ExpiresAt time.Time
}
