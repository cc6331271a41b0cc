// Package config loads and validates the service configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/net/idna"
)

// Config holds everything the service needs at startup. All values come from
// the environment (optionally seeded from a .env file); nothing is read from
// durable storage afterwards.
type Config struct {
	// Domain is the single fully qualified domain name the certificate is
	// issued for and the OAuth redirect URI is derived from.
	Domain string `env:"DOMAIN,required"`

	// DirectoryURL is the ACME server's directory endpoint.
	DirectoryURL string `env:"ACME_DIRECTORY_URL" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`
	// ContactEmail is the ACME account contact. Defaults to admin@<Domain>.
	ContactEmail string `env:"ACME_CONTACT_EMAIL"`
	// CACertPath optionally points at PEM CA certificates used as trust roots
	// for HTTPS requests to the ACME server (e.g. a Pebble test root).
	CACertPath string `env:"ACME_CA_CERT"`

	// OAuthClientID identifies this service with the identity provider.
	OAuthClientID string `env:"PAYPAL_CLIENT_ID,required"`
	// OAuthClientSecret is the client secret. When empty it is read from
	// OAuthClientSecretFile instead.
	OAuthClientSecret string `env:"PAYPAL_CLIENT_SECRET"`
	// OAuthClientSecretFile is a file path holding the client secret, for
	// deployments that mount secrets rather than inject them.
	OAuthClientSecretFile string `env:"PAYPAL_CLIENT_SECRET_FILE"`

	// ListenAddr is the address the TLS-terminating listener binds.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":443"`
	// ChallengeAddr is the plaintext address the HTTP-01 challenge responder
	// binds while the certificate order is validating.
	ChallengeAddr string `env:"CHALLENGE_ADDR" envDefault:":80"`
	// LogLevel selects the minimum slog level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	// Missing .env files are fine; the environment may be populated by the
	// instance metadata service instead.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Domain = strings.TrimSpace(c.Domain)
	if err := ValidateDomain(c.Domain); err != nil {
		return err
	}

	if c.ContactEmail == "" {
		c.ContactEmail = "admin@" + c.Domain
	}

	if c.OAuthClientSecret == "" && c.OAuthClientSecretFile != "" {
		secret, err := os.ReadFile(c.OAuthClientSecretFile)
		if err != nil {
			return fmt.Errorf("config: reading client secret file: %w", err)
		}
		c.OAuthClientSecret = strings.TrimSpace(string(secret))
	}
	if c.OAuthClientSecret == "" {
		return errors.New("config: PAYPAL_CLIENT_SECRET or PAYPAL_CLIENT_SECRET_FILE must be set")
	}

	return nil
}

// RedirectURI derives the OAuth callback URI served on the configured domain.
func (c *Config) RedirectURI() string {
	return fmt.Sprintf("https://%s/callback", c.Domain)
}

// ValidateDomain checks domain for validity. Exactly one non-wildcard fully
// qualified domain name is accepted; the HTTP-01 challenge cannot validate
// wildcards.
func ValidateDomain(domain string) error {
	if len(domain) < 1 {
		return errors.New("config: domain cannot be empty")
	}
	if strings.Contains(domain, "*") {
		return errors.New("config: wildcard domains are not supported")
	}
	if !strings.Contains(strings.Trim(domain, "."), ".") {
		return errors.New("config: domain must be fully qualified")
	}

	if _, err := idna.Registration.ToASCII(domain); err != nil {
		return fmt.Errorf("config: domain is invalid: %w", err)
	}

	return nil
}
