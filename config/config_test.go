package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DOMAIN", "auth.example.com")
	t.Setenv("PAYPAL_CLIENT_ID", "client-abc")
	t.Setenv("PAYPAL_CLIENT_SECRET", "secret-xyz")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auth.example.com", cfg.Domain)
	assert.Equal(t, "https://acme-v02.api.letsencrypt.org/directory", cfg.DirectoryURL)
	assert.Equal(t, "admin@auth.example.com", cfg.ContactEmail)
	assert.Equal(t, ":443", cfg.ListenAddr)
	assert.Equal(t, ":80", cfg.ChallengeAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://auth.example.com/callback", cfg.RedirectURI())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACME_DIRECTORY_URL", "https://localhost:14000/dir")
	t.Setenv("ACME_CONTACT_EMAIL", "ops@example.com")
	t.Setenv("LISTEN_ADDR", ":8443")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://localhost:14000/dir", cfg.DirectoryURL)
	assert.Equal(t, "ops@example.com", cfg.ContactEmail)
	assert.Equal(t, ":8443", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadSecretFromFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYPAL_CLIENT_SECRET", "")

	secretFile := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(secretFile, []byte("file-secret\n"), 0o600))
	t.Setenv("PAYPAL_CLIENT_SECRET_FILE", secretFile)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.OAuthClientSecret)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("DOMAIN", "auth.example.com")
	t.Setenv("PAYPAL_CLIENT_ID", "client-abc")
	t.Setenv("PAYPAL_CLIENT_SECRET", "")
	t.Setenv("PAYPAL_CLIENT_SECRET_FILE", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateDomain(t *testing.T) {
	testCases := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{name: "valid", domain: "auth.example.com"},
		{name: "empty", domain: "", wantErr: true},
		{name: "wildcard", domain: "*.example.com", wantErr: true},
		{name: "unqualified", domain: "localhost", wantErr: true},
		{name: "idn", domain: "münchen.example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDomain(tc.domain)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
