package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/umardevX/ems-console/internal/forms"
)

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("ana", "ana@example.com", "Passw0rd!"); err != nil {
		t.Errorf("ValidateRegistration() error = %v, want nil", err)
	}

	err := ValidateRegistration("", "ana", "password")
	var fe forms.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("ValidateRegistration() error = %v, want forms.FieldErrors", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if fe[field] == "" {
			t.Errorf("expected an error for %s, got %v", field, fe)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNewUser(t *testing.T) {
	svc := NewAuthService([]byte(testSecret), time.Hour)

	u, err := svc.NewUser(" ana ", "Ana@Example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("expected a generated ID")
	}
	if u.Username != "ana" || u.Email != "ana@example.com" {
		t.Errorf("user = %+v", u)
	}
	if err := svc.VerifyPassword(u.PasswordHash, "Passw0rd!"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}
