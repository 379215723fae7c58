package session

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umardevX/ems-console/internal/keychain"
)

var signingKey = []byte("test-secret-key-min-32-bytes-long!")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return token
}

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore(keychain.NewMemoryKeychain())

	_, err := store.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Set("T"))
	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "T", token)

	require.NoError(t, store.Clear())
	_, err = store.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	// Clearing twice is fine
	assert.NoError(t, store.Clear())
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	store := NewStore(keychain.NewMemoryKeychain())
	assert.Error(t, store.Set(""))
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  Verdict
	}{
		{
			name:  "missing",
			token: "",
			want:  Missing,
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
			want:  Malformed,
		},
		{
			name:  "two segments",
			token: "abc.def",
			want:  Malformed,
		},
		{
			name:  "expiry in the past",
			token: signToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}),
			want:  Expired,
		},
		{
			name:  "expiry exactly now",
			token: signToken(t, jwt.MapClaims{"exp": now.Unix()}),
			want:  Expired,
		},
		{
			name:  "no expiry claim",
			token: signToken(t, jwt.MapClaims{"sub": "user-1"}),
			want:  Expired,
		},
		{
			name:  "expiry of wrong type",
			token: signToken(t, jwt.MapClaims{"exp": "tomorrow"}),
			want:  Malformed,
		},
		{
			name:  "expiry in the future",
			token: signToken(t, jwt.MapClaims{"exp": now.Add(time.Second).Unix()}),
			want:  Valid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Evaluate(tt.token, now)
			assert.Equal(t, tt.want, got)
			if tt.want == Malformed {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_IgnoresSignature(t *testing.T) {
	now := time.Now()
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":   now.Add(time.Hour).Unix(),
		"sub":   "42",
		"email": "a@b.com",
	}).SignedString([]byte("a-completely-different-signing-key"))
	require.NoError(t, err)

	verdict, claims, err := Evaluate(other, now)
	require.NoError(t, err)
	assert.Equal(t, Valid, verdict)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestEvaluate_ExpiryProperty(t *testing.T) {
	now := time.Unix(1_800_000_000, 500_000_000)

	for offset := int64(-5); offset <= 5; offset++ {
		exp := now.Unix() + offset
		verdict, _, _ := Evaluate(signToken(t, jwt.MapClaims{"exp": exp}), now)
		if exp*1000 <= now.UnixMilli() {
			assert.Equal(t, Expired, verdict, "exp offset %d", offset)
		} else {
			assert.Equal(t, Valid, verdict, "exp offset %d", offset)
		}
	}

	// exp may carry a fraction of a second
	fractional := []struct {
		exp  float64
		want Verdict
	}{
		{exp: 1_800_000_000.7, want: Valid},
		{exp: 1_800_000_000.5, want: Expired},
		{exp: 1_800_000_000.2, want: Expired},
	}
	for _, tt := range fractional {
		verdict, claims, _ := Evaluate(signToken(t, jwt.MapClaims{"exp": tt.exp}), now)
		assert.Equal(t, tt.want, verdict, "exp %v", tt.exp)
		require.NotNil(t, claims)
	}
}

type brokenReader struct{}

func (brokenReader) Token() (string, error) { return "", errors.New("keyring locked") }

func TestValidator_Check(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("missing token", func(t *testing.T) {
		v := NewValidator(NewStore(keychain.NewMemoryKeychain()), zerolog.Nop()).WithClock(clock)
		verdict, _ := v.Check()
		assert.Equal(t, Missing, verdict)
		assert.False(t, v.IsValid())
	})

	t.Run("unreadable store counts as missing", func(t *testing.T) {
		var buf bytes.Buffer
		v := NewValidator(brokenReader{}, zerolog.New(&buf)).WithClock(clock)
		verdict, _ := v.Check()
		assert.Equal(t, Missing, verdict)
		assert.Contains(t, buf.String(), "keyring locked")
	})

	t.Run("malformed token is logged", func(t *testing.T) {
		var buf bytes.Buffer
		store := NewStore(keychain.NewMemoryKeychain())
		require.NoError(t, store.Set("%%%"))

		v := NewValidator(store, zerolog.New(&buf)).WithClock(clock)
		verdict, _ := v.Check()
		assert.Equal(t, Malformed, verdict)
		assert.Contains(t, buf.String(), "session token malformed")
	})

	t.Run("valid token", func(t *testing.T) {
		store := NewStore(keychain.NewMemoryKeychain())
		require.NoError(t, store.Set(signToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})))

		v := NewValidator(store, zerolog.Nop()).WithClock(clock)
		verdict, claims := v.Check()
		assert.Equal(t, Valid, verdict)
		require.NotNil(t, claims.ExpiresAt)
		assert.True(t, v.IsValid())
	})

	t.Run("token expires while stored", func(t *testing.T) {
		store := NewStore(keychain.NewMemoryKeychain())
		require.NoError(t, store.Set(signToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})))

		current := now
		v := NewValidator(store, zerolog.Nop()).WithClock(func() time.Time { return current })
		assert.True(t, v.IsValid())

		current = now.Add(2 * time.Minute)
		assert.False(t, v.IsValid())
	})
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}
