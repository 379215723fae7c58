// Package forms holds the sign-in and sign-up field rules shared by the
// console and the reference server.
package forms

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	lowerPattern  = regexp.MustCompile(`[a-z]`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	symbolPattern = regexp.MustCompile(`[!@#$%^&*]`)
)

// MinPasswordLength is the shortest password the forms accept
const MinPasswordLength = 6

// FieldErrors maps a form field to its first validation failure
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateSignIn checks the sign-in form
func ValidateSignIn(email, password string) error {
	fe := FieldErrors{}
	checkEmail(fe, email)
	checkPassword(fe, password)
	return fe.orNil()
}

// ValidateSignUp checks the sign-up form
func ValidateSignUp(username, email, password string) error {
	fe := FieldErrors{}
	if strings.TrimSpace(username) == "" {
		fe["username"] = "Username is required"
	}
	checkEmail(fe, email)
	checkPassword(fe, password)
	return fe.orNil()
}

func checkEmail(fe FieldErrors, email string) {
	switch {
	case email == "":
		fe["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fe["email"] = "Email is invalid"
	}
}

func checkPassword(fe FieldErrors, password string) {
	switch {
	case password == "":
		fe["password"] = "Password is required"
	case utf8.RuneCountInString(password) < MinPasswordLength:
		fe["password"] = "Password must be at least 6 characters long"
	case !lowerPattern.MatchString(password) || !upperPattern.MatchString(password) || !symbolPattern.MatchString(password):
		fe["password"] = "Password must have uppercase, lowercase, and special character"
	}
}
