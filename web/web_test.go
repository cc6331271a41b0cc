package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidant-sh/confidant/acme"
	"github.com/confidant-sh/confidant/attest"
	"github.com/confidant-sh/confidant/challenge"
	"github.com/confidant-sh/confidant/identity"
	"github.com/confidant-sh/confidant/oauth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestIdentityProvider serves the token and userinfo endpoints of a
// pretend identity provider that accepts any code.
func newTestIdentityProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(oauth.TokenResponse{
			AccessToken: "token-123",
			TokenType:   "Bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(oauth.UserInfo{
			UserID:        "user-1",
			Name:          "Jordan Example",
			Email:         "jordan@example.com",
			EmailVerified: true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	idp := newTestIdentityProvider(t)

	provider := oauth.NewProvider("client-abc", "secret-xyz", "https://auth.example.com/callback")
	provider.AuthorizeURL = idp.URL + "/authorize"
	provider.TokenURL = idp.URL + "/token"
	provider.UserinfoURL = idp.URL + "/userinfo"

	return &Handlers{
		Domain:    "auth.example.com",
		OAuth:     provider,
		Seen:      identity.NewSeenSet(),
		Attestor:  &attest.FixtureProvider{},
		Challenge: challenge.NewStore(),
		Log:       testLogger(),
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	router := newTestHandlers(t).Router()

	rec := get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Confidential Authentication")
	assert.Contains(t, body, "auth.example.com")

	assert.Equal(t, http.StatusNotFound, get(t, router, "/nope").Code)
}

func TestLoginRedirect(t *testing.T) {
	router := newTestHandlers(t).Router()

	rec := get(t, router, "/login")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "client_id=client-abc")
}

func TestCallback(t *testing.T) {
	router := newTestHandlers(t).Router()

	rec := get(t, router, "/callback?code=the-code")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Authentication Successful")
	assert.Contains(t, body, "user-1")
	assert.Contains(t, body, "Jordan Example")
	assert.Contains(t, body, "mock_attestation")
	assert.Contains(t, body, attest.ReportData("client-abc", "user-1"))
}

func TestCallbackRepeatIdentityRejected(t *testing.T) {
	router := newTestHandlers(t).Router()

	require.Equal(t, http.StatusOK, get(t, router, "/callback?code=first").Code)

	rec := get(t, router, "/callback?code=second")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already Used")
	assert.NotContains(t, rec.Body.String(), "Authentication Successful")
}

func TestCallbackProviderError(t *testing.T) {
	router := newTestHandlers(t).Router()

	rec := get(t, router, "/callback?error=access_denied")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication Error")
	assert.Contains(t, rec.Body.String(), "access_denied")
}

func TestCallbackMissingCode(t *testing.T) {
	router := newTestHandlers(t).Router()

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/callback").Code)
}

func TestChallengeRouteMounted(t *testing.T) {
	handlers := newTestHandlers(t)
	handlers.Challenge.Put("tok-1", "tok-1.thumbprint")
	router := handlers.Router()

	rec := get(t, router, acme.CHALLENGE_PATH_PREFIX+"tok-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-1.thumbprint", rec.Body.String())

	assert.Equal(t, http.StatusNotFound,
		get(t, router, acme.CHALLENGE_PATH_PREFIX+"unknown").Code)
}
