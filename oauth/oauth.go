// Package oauth implements the authorization-code flow against a PayPal-style
// identity provider. It is a thin HTTP collaborator: token exchange and
// profile lookup, nothing more.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthorizeURL = "https://www.paypal.com/signin/authorize"
	defaultTokenURL     = "https://api.paypal.com/v1/oauth2/token"
	defaultUserinfoURL  = "https://api.paypal.com/v1/identity/oauth2/userinfo?schema=paypalv1.1"

	maxResponseSize = 1 << 20
)

// TokenResponse is the provider's reply to a successful code exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token,omitempty"`
}

// UserInfo is the provider's profile record for an authenticated user.
type UserInfo struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// Provider exchanges authorization codes for tokens and looks up profiles.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides, used by tests. Zero values select the PayPal
	// production endpoints.
	AuthorizeURL string
	TokenURL     string
	UserinfoURL  string

	httpClient *http.Client
}

// NewProvider constructs a Provider for the given client credentials.
func NewProvider(clientID, clientSecret, redirectURI string) *Provider {
	return &Provider{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *Provider) authorizeURL() string {
	if p.AuthorizeURL != "" {
		return p.AuthorizeURL
	}
	return defaultAuthorizeURL
}

func (p *Provider) tokenURL() string {
	if p.TokenURL != "" {
		return p.TokenURL
	}
	return defaultTokenURL
}

func (p *Provider) userinfoURL() string {
	if p.UserinfoURL != "" {
		return p.UserinfoURL
	}
	return defaultUserinfoURL
}

// LoginURL builds the provider's authorize URL the browser is redirected to.
func (p *Provider) LoginURL() string {
	return fmt.Sprintf(
		"%s?client_id=%s&response_type=code&scope=%s&redirect_uri=%s",
		p.authorizeURL(),
		url.QueryEscape(p.ClientID),
		url.QueryEscape("openid profile email"),
		url.QueryEscape(p.RedirectURI),
	)
}

// ExchangeCode trades an authorization code for an access token.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":   []string{"authorization_code"},
		"code":         []string{code},
		"redirect_uri": []string{p.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth: token exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: token exchange failed with status %d: %s",
			resp.StatusCode, body)
	}

	token := &TokenResponse{}
	if err := json.Unmarshal(body, token); err != nil {
		return nil, fmt.Errorf("oauth: parsing token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("oauth: token response carried no access token")
	}
	return token, nil
}

// Userinfo fetches the authenticated user's profile record.
func (p *Provider) Userinfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth: userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: userinfo failed with status %d: %s",
			resp.StatusCode, body)
	}

	info := &UserInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, fmt.Errorf("oauth: parsing userinfo response: %w", err)
	}
	if info.UserID == "" {
		return nil, fmt.Errorf("oauth: userinfo response carried no user id")
	}
	return info, nil
}
