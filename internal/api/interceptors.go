package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/umardevX/ems-console/internal/session"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const credentialExchangeKey ctxKey = 0

// withCredentialExchange marks a request as a sign-in or sign-up. A 401 on
// such a request is a rejected credential, not an ended session.
func withCredentialExchange(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialExchangeKey, true)
}

func isCredentialExchange(req *http.Request) bool {
	v, _ := req.Context().Value(credentialExchangeKey).(bool)
	return v
}

// roundTripFunc adapts a function to http.RoundTripper
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// interceptor wraps one round tripper in another
type interceptor func(next http.RoundTripper) http.RoundTripper

// chain applies interceptors so the last one listed sees the request first
func chain(base http.RoundTripper, ics ...interceptor) http.RoundTripper {
	rt := base
	for _, ic := range ics {
		rt = ic(rt)
	}
	return rt
}

// requestInterceptor attaches the bearer token, if any, and a request id.
// A token source failure other than "no token" rejects the request.
func (c *Client) requestInterceptor(next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		out := req.Clone(req.Context())
		if out.Header.Get(RequestIDHeader) == "" {
			out.Header.Set(RequestIDHeader, uuid.NewString())
		}

		if c.tokens != nil {
			token, err := c.tokens.Token()
			switch {
			case err == nil:
				out.Header.Set("Authorization", "Bearer "+token)
			case errors.Is(err, session.ErrNoToken):
			default:
				c.log.Error().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request interceptor failed")
				return nil, fmt.Errorf("failed to read session token: %w", err)
			}
		}

		return next.RoundTrip(out)
	})
}

// responseInterceptor logs failures and hands 401s on authenticated
// requests to the unauthorized handler. Responses are returned unchanged.
func (c *Client) responseInterceptor(next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(req)
		if err != nil {
			c.log.Error().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			reqID := ""
			if resp.Request != nil {
				reqID = resp.Request.Header.Get(RequestIDHeader)
			}
			c.log.Error().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", resp.StatusCode).
				Str("request_id", reqID).
				Msg("request rejected")
		}

		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil && authenticated(resp) && !isCredentialExchange(req) {
			c.onUnauthorized(req)
		}
		return resp, nil
	})
}

// authenticated reports whether the request that produced resp carried a
// bearer token
func authenticated(resp *http.Response) bool {
	return resp.Request != nil && resp.Request.Header.Get("Authorization") != ""
}
