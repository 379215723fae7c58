package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verdict is the outcome of a session check
type Verdict int

const (
	Valid Verdict = iota
	Missing
	Malformed
	Expired
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Missing:
		return "missing"
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Claims are the token fields the console looks at
type Claims struct {
	Subject   string
	Email     string
	Username  string
	ExpiresAt *time.Time

	// exp as sent, in seconds; may carry a fraction
	exp float64
}

// Decode reads the claims of a JWT without checking its signature. The
// console never holds the signing key; the server remains the authority.
func Decode(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to decode token: unexpected claims type")
	}

	claims := &Claims{}
	claims.Subject, _ = mc.GetSubject()
	claims.Email, _ = mc["email"].(string)
	claims.Username, _ = mc["username"].(string)

	// GetExpirationTime validates the claim type but truncates to whole
	// seconds, so the raw value is kept for the expiry comparison
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if exp != nil {
		claims.exp = rawSeconds(mc["exp"])
		sec, frac := math.Modf(claims.exp)
		t := time.Unix(int64(sec), int64(frac*1e9))
		claims.ExpiresAt = &t
	}

	return claims, nil
}

func rawSeconds(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

// Evaluate decides whether token grants a session at now. It has no side
// effects; callers choose what to do with a non-valid verdict. The error is
// only set for Malformed.
func Evaluate(token string, now time.Time) (Verdict, *Claims, error) {
	if token == "" {
		return Missing, nil, nil
	}

	claims, err := Decode(token)
	if err != nil {
		return Malformed, nil, err
	}

	if claims.ExpiresAt == nil || claims.exp*1000 <= float64(now.UnixMilli()) {
		return Expired, claims, nil
	}

	return Valid, claims, nil
}
