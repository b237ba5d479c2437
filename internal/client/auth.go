// ABOUTME: Credential login and one-time auth key exchange endpoints
// ABOUTME: Both return the bearer token wrapped in {data:{auth:{token}}}

package client

import (
	"context"
	"net/http"
	"net/url"
)

// LoginRequest is the credential-login body
type LoginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// AuthResult is the decoded outcome of a login or exchange call
type AuthResult struct {
	Token   string
	Message string
}

type authData struct {
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

// Login calls POST /admin/auth/login.
// A decoded response without a token returns the result together with ErrMissingToken.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	header := http.Header{}
	header.Set("Accept-Language", "en")

	var resp envelope[*authData]
	if err := c.doJSON(ctx, c.authClient, http.MethodPost, "/admin/auth/login", req, header, &resp); err != nil {
		return nil, err
	}
	return authResult(resp)
}

// ExchangeAuthKey calls POST /auth/login/{key} to trade a one-time key for a token
func (c *Client) ExchangeAuthKey(ctx context.Context, key string) (*AuthResult, error) {
	var resp envelope[*authData]
	path := "/auth/login/" + url.PathEscape(key)
	if err := c.doJSON(ctx, c.authClient, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return authResult(resp)
}

func authResult(resp envelope[*authData]) (*AuthResult, error) {
	result := &AuthResult{Message: resp.Message}
	if resp.Data == nil || resp.Data.Auth.Token == "" {
		return result, ErrMissingToken
	}
	result.Token = resp.Data.Auth.Token
	return result, nil
}
