package session

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// TokenReader is the read side of a Store
type TokenReader interface {
	Token() (string, error)
}

// Validator checks the stored token against the wall clock. It never
// navigates; the router reacts to its verdict.
type Validator struct {
	tokens TokenReader
	now    func() time.Time
	log    zerolog.Logger
}

// NewValidator creates a validator reading from tokens
func NewValidator(tokens TokenReader, log zerolog.Logger) *Validator {
	return &Validator{
		tokens: tokens,
		now:    time.Now,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// WithClock replaces the time source, for tests
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Check evaluates the stored token. Non-valid verdicts are logged as
// diagnostics and otherwise swallowed.
func (v *Validator) Check() (Verdict, *Claims) {
	token, err := v.tokens.Token()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			v.log.Error().Err(err).Msg("session token unreadable")
		} else {
			v.log.Debug().Msg("no session token")
		}
		return Missing, nil
	}

	verdict, claims, err := Evaluate(token, v.now())
	switch verdict {
	case Malformed:
		v.log.Error().Err(err).Msg("session token malformed")
	case Expired:
		ev := v.log.Info()
		if claims != nil && claims.ExpiresAt != nil {
			ev = ev.Time("expired_at", *claims.ExpiresAt)
		}
		ev.Msg("session token expired")
	}
	return verdict, claims
}

// IsValid is the predicate handed to the route guard
func (v *Validator) IsValid() bool {
	verdict, _ := v.Check()
	return verdict == Valid
}
