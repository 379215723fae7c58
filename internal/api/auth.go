package api

import (
	"context"
	"errors"
	"net/http"
)

// ErrMissingToken is returned when a sign-in response carries no token
var ErrMissingToken = errors.New("sign-in response did not include a token")

// SignInRequest represents the sign-in request body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse represents the sign-in response
type SignInResponse struct {
	Token string `json:"token"`
}

// SignUpRequest represents the sign-up request body
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResponse represents the sign-up response
type SignUpResponse struct {
	Message string `json:"message"`
}

// SignIn exchanges credentials for a bearer token. Only a 200 counts as
// success; any other 2xx comes back as a *StatusError.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp SignInResponse
	code, err := c.do(withCredentialExchange(ctx), http.MethodPost, "/signin", SignInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		return "", &StatusError{Method: http.MethodPost, Path: "/signin", Code: code}
	}
	if resp.Token == "" {
		return "", ErrMissingToken
	}
	return resp.Token, nil
}

// SignUp registers a new account. As with SignIn only a 200 is success.
func (c *Client) SignUp(ctx context.Context, username, email, password string) (string, error) {
	var resp SignUpResponse
	code, err := c.do(withCredentialExchange(ctx), http.MethodPost, "/signup", SignUpRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		return "", &StatusError{Method: http.MethodPost, Path: "/signup", Code: code}
	}
	return resp.Message, nil
}
