package middleware

import (
	"errors"
	"net/http"
)

// MaxBodySize returns middleware that limits request body size.
// Reads past maxBytes fail with *http.MaxBytesError.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// HandleMaxBytesError answers 413 when err came from an oversized body and
// reports whether it did
func HandleMaxBytesError(w http.ResponseWriter, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}

	writeJSON(w, http.StatusRequestEntityTooLarge, map[string]interface{}{
		"error":          "Request body too large",
		"max_size_bytes": tooLarge.Limit,
	})
	return true
}
