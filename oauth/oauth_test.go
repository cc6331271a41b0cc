package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(srvURL string) *Provider {
	p := NewProvider("client-abc", "secret-xyz", "https://example.com/callback")
	p.AuthorizeURL = srvURL + "/authorize"
	p.TokenURL = srvURL + "/token"
	p.UserinfoURL = srvURL + "/userinfo"
	return p
}

func TestLoginURL(t *testing.T) {
	p := testProvider("https://idp.example")

	loginURL, err := url.Parse(p.LoginURL())
	require.NoError(t, err)

	query := loginURL.Query()
	assert.Equal(t, "client-abc", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "openid profile email", query.Get("scope"))
	assert.Equal(t, "https://example.com/callback", query.Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-abc", user)
		assert.Equal(t, "secret-xyz", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://example.com/callback", r.PostForm.Get("redirect_uri"))

		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "token-123",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
	defer srv.Close()

	token, err := testProvider(srv.URL).ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "token-123", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestExchangeCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestExchangeCodeMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).ExchangeCode(context.Background(), "the-code")
	require.Error(t, err)
}

func TestUserinfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(UserInfo{
			UserID:        "user-1",
			Name:          "Jordan Example",
			Email:         "jordan@example.com",
			EmailVerified: true,
		})
	}))
	defer srv.Close()

	info, err := testProvider(srv.URL).Userinfo(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.UserID)
	assert.Equal(t, "Jordan Example", info.Name)
	assert.True(t, info.EmailVerified)
}

func TestUserinfoMissingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Nameless"}`))
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).Userinfo(context.Background(), "token-123")
	require.Error(t, err)
}
