// Package client provides a low-level ACME v2 client.
package client

import (
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/confidant-sh/confidant/acme/resources"
	acmenet "github.com/confidant-sh/confidant/net"
)

// Client allows interaction with an ACME server. A Client owns exactly one
// Account, created fresh in memory when the Client is constructed and
// registered server-side with CreateAccount. The Account's keypair signs the
// JWS carried by every request. Internally the Client uses the
// confidant/net package to perform HTTP requests to the ACME server.
//
// The Client's DirectoryURL field is a parsed *url.URL for the ACME server's
// directory. The client configures itself with the correct URLs for ACME
// operations using the directory resource accessed at this URL. See
// https://tools.ietf.org/html/rfc8555#section-7.1.1
//
// All reads of server-side resources are performed as POST-as-GET requests as
// required by RFC 8555 section 6.3.
type Client struct {
	// A parsed *url.URL pointer for the ACME server's directory URL.
	DirectoryURL *url.URL
	// The single ephemeral Account this client authenticates as.
	Account *resources.Account
	// the net object is used to make HTTP GET/POST/HEAD requests to the ACME
	// server.
	net *acmenet.ACMENet
	log *slog.Logger
	// directory is an in-memory representation of the ACME server's directory
	// object.
	directory map[string]any
	// nonce is the value of the last-seen Replay-Nonce header from the ACME
	// server's HTTP responses. It will be used for the next signing operation.
	nonce string
}

// Config contains configuration options provided to New when creating
// a Client instance.
type Config struct {
	// A fully qualified URL for the ACME server's directory resource. Must
	// include an HTTP/HTTPS protocol prefix.
	DirectoryURL string
	// An optional file path to one or more PEM encoded CA certificates to be
	// used as trust roots for HTTPS requests to the ACME server (e.g. the
	// Pebble minica root when testing). If empty the system roots are used.
	CACert string
	// A single email address used as the new ACME account's mailto contact.
	ContactEmail string
}

// normalize validates a Config.
func (conf *Config) normalize() error {
	// Clean up any junk whitespace that might have snuck in
	conf.DirectoryURL = strings.TrimSpace(conf.DirectoryURL)
	conf.ContactEmail = strings.TrimSpace(conf.ContactEmail)

	if conf.DirectoryURL == "" {
		return fmt.Errorf("DirectoryURL must not be empty")
	}

	if _, err := url.Parse(conf.DirectoryURL); err != nil {
		return fmt.Errorf("DirectoryURL invalid: %s", err.Error())
	}

	if conf.ContactEmail != "" {
		addr, err := mail.ParseAddress(conf.ContactEmail)
		if err != nil {
			return fmt.Errorf("ContactEmail is invalid: %s", err.Error())
		}
		conf.ContactEmail = addr.Address
	}

	return nil
}

// New creates a Client instance from the given Config. The Client holds
// a fresh in-memory Account keypair; the Account is not registered with the
// ACME server until CreateAccount is called. If the config is not valid or if
// another error occurs it will be returned along with a nil Client.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.normalize(); err != nil {
		return nil, err
	}

	net, err := acmenet.New(config.CACert)
	if err != nil {
		return nil, fmt.Errorf("unable to create ACME net client: %w", err)
	}

	// NOTE: its safe to throw away the returned err here because we check
	// that `url.Parse` will succeed in `config.normalize()` above.
	dirURL, _ := url.Parse(config.DirectoryURL)

	acct, err := resources.NewAccount([]string{config.ContactEmail}, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		DirectoryURL: dirURL,
		Account:      acct,
		net:          net,
		log:          logger,
	}, nil
}
