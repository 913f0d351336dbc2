// Package google implements OAuth 2.0 / OIDC authentication with Google.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/quicklendar/internal/oauth"
)

const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"
	revokeEndpoint   = "https://oauth2.googleapis.com/revoke"
)

// Provider is the Google OAuth 2.0 client.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	http *http.Client

	// endpoints are overridable in tests
	authURL     string
	tokenURL    string
	userinfoURL string
	revokeURL   string
}

// New creates a new Google provider.
func New(clientID, clientSecret, redirectURL string, scopes []string) *Provider {
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}
	return &Provider{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		http:         &http.Client{Timeout: 10 * time.Second},
		authURL:      authEndpoint,
		tokenURL:     tokenEndpoint,
		userinfoURL:  userinfoEndpoint,
		revokeURL:    revokeEndpoint,
	}
}

func (g *Provider) Name() string { return "google" }

// AuthorizeURL builds the authorization URL.
func (g *Provider) AuthorizeURL(state string) string {
	u, _ := url.Parse(g.authURL)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", g.ClientID)
	q.Set("redirect_uri", g.RedirectURL)
	q.Set("scope", strings.Join(g.Scopes, " "))
	q.Set("state", state)
	q.Set("access_type", "offline")
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// ExchangeCode exchanges an authorization code for tokens.
// Google requires redirect_uri on the token request; state is not sent.
func (g *Provider) ExchangeCode(ctx context.Context, code, _ string) (*oauth.Grant, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, "POST", g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchange, err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", oauth.ErrExchange, err)
	}
	if resp.StatusCode/100 != 2 || tr.Error != "" {
		return nil, fmt.Errorf("%w: http %d: %s %s", oauth.ErrExchange, resp.StatusCode, tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access_token in response", oauth.ErrExchange)
	}

	grant := &oauth.Grant{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}
	if tr.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
		grant.ExpiresAt = &exp
	}
	return grant, nil
}

// FetchProfile fetches the userinfo payload with a bearer token.
// Google exposes sub/email/name as top-level claims.
func (g *Provider) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", g.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: status %d", resp.StatusCode)
	}
	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("google userinfo: decode: %w", err)
	}
	return attrs, nil
}

// Revoke revokes the access token and, if present, the refresh token.
// Two separate calls against /revoke; either non-success is fatal and the
// caller must keep local state so the unlink stays retryable.
func (g *Provider) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	if err := g.revokeOne(ctx, accessToken); err != nil {
		return fmt.Errorf("%w: access token: %v", oauth.ErrRevocation, err)
	}
	if refreshToken != "" {
		if err := g.revokeOne(ctx, refreshToken); err != nil {
			return fmt.Errorf("%w: refresh token: %v", oauth.ErrRevocation, err)
		}
	}
	return nil
}

func (g *Provider) revokeOne(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, "POST", g.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
