// Package naver implements OAuth 2.0 authentication with Naver.
// Naver uses a single token endpoint for issue and revoke (grant_type=delete)
// and nests the real profile fields inside a "response" sub-object.
package naver

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
	authEndpoint    = "https://nid.naver.com/oauth2.0/authorize"
	tokenEndpoint   = "https://nid.naver.com/oauth2.0/token"
	profileEndpoint = "https://openapi.naver.com/v1/nid/me"
)

// Provider is the Naver OAuth 2.0 client.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	http *http.Client

	authURL    string
	tokenURL   string
	profileURL string
}

// New creates a new Naver provider.
func New(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		http:         &http.Client{Timeout: 10 * time.Second},
		authURL:      authEndpoint,
		tokenURL:     tokenEndpoint,
		profileURL:   profileEndpoint,
	}
}

func (n *Provider) Name() string { return "naver" }

// AuthorizeURL builds the authorization URL.
func (n *Provider) AuthorizeURL(state string) string {
	u, _ := url.Parse(n.authURL)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", n.ClientID)
	q.Set("redirect_uri", n.RedirectURL)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    string `json:"expires_in"` // naver lo manda como string
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// ExchangeCode exchanges an authorization code for tokens.
// Naver requires the state on the token request instead of redirect_uri.
func (n *Provider) ExchangeCode(ctx context.Context, code, state string) (*oauth.Grant, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", n.ClientID)
	form.Set("client_secret", n.ClientSecret)
	form.Set("code", code)
	form.Set("state", state)

	req, err := http.NewRequestWithContext(ctx, "POST", n.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.http.Do(req)
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
	if secs, err := time.ParseDuration(tr.ExpiresIn + "s"); err == nil && secs > 0 {
		exp := time.Now().Add(secs)
		grant.ExpiresAt = &exp
	}
	return grant, nil
}

// FetchProfile fetches the profile payload with a bearer token.
// The real fields come nested under "response" (id/email/name/mobile).
func (n *Provider) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", n.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver profile: status %d", resp.StatusCode)
	}
	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("naver profile: decode: %w", err)
	}
	return attrs, nil
}

// Revoke issues one delete call against the token endpoint with the client
// credentials and the stored access token. Naver has no separate refresh
// revoke; the refreshToken argument is ignored.
func (n *Provider) Revoke(ctx context.Context, accessToken, _ string) error {
	form := url.Values{}
	form.Set("grant_type", "delete")
	form.Set("client_id", n.ClientID)
	form.Set("client_secret", n.ClientSecret)
	form.Set("access_token", accessToken)
	form.Set("service_provider", "naver")

	req, err := http.NewRequestWithContext(ctx, "POST", n.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrRevocation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrRevocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", oauth.ErrRevocation, resp.StatusCode)
	}
	return nil
}
