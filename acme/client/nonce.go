package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/confidant-sh/confidant/acme"
)

// nonce satisfies the JWS "NonceSource" interface with a fixed value fetched
// just before signing. Plumbing an explicit value through keeps request
// contexts attached to the HTTP round trip that fetched the nonce.
type nonce string

func (n nonce) Nonce() (string, error) {
	return string(n), nil
}

// popNonce returns the stored nonce from the previous response, first
// fetching a replacement from the ACME server's newNonce endpoint when none
// is available. This keeps a constant supply of fresh nonces.
func (c *Client) popNonce(ctx context.Context) (string, error) {
	if c.nonce == "" {
		if err := c.RefreshNonce(ctx); err != nil {
			return "", err
		}
	}
	n := c.nonce
	c.nonce = ""
	return n, nil
}

// storeNonce retains the Replay-Nonce header of an ACME response, if any, for
// use by the next signing operation.
func (c *Client) storeNonce(resp *http.Response) {
	if n := resp.Header.Get(acme.REPLAY_NONCE_HEADER); n != "" {
		c.nonce = n
	}
}

// RefreshNonce fetches a new nonce from the ACME server's NewNonce endpoint
// and stores it in the client's memory.
//
// See https://tools.ietf.org/html/rfc8555#section-7.2
func (c *Client) RefreshNonce(ctx context.Context) error {
	nonceURL, ok := c.GetEndpointURL(ctx, acme.NEW_NONCE_ENDPOINT)
	if !ok {
		return fmt.Errorf("%w: missing %q entry in ACME server directory",
			acme.ErrProtocol, acme.NEW_NONCE_ENDPOINT)
	}

	resp, err := c.net.HeadURL(ctx, nonceURL)
	if err != nil {
		return fmt.Errorf("fetching nonce: %w: %w", acme.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %q returned HTTP status %d, expected %d",
			acme.ErrProtocol, acme.NEW_NONCE_ENDPOINT, resp.StatusCode, http.StatusOK)
	}

	newNonce := resp.Header.Get(acme.REPLAY_NONCE_HEADER)
	if newNonce == "" {
		return fmt.Errorf("%w: %q returned no %q header value",
			acme.ErrProtocol, acme.NEW_NONCE_ENDPOINT, acme.REPLAY_NONCE_HEADER)
	}

	c.nonce = newNonce
	return nil
}
