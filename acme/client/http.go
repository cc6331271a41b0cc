package client

import (
	"context"
	"fmt"

	"github.com/confidant-sh/confidant/acme"
	"github.com/confidant-sh/confidant/net"
)

// postJWS signs the given payload for the given URL using the provided
// SigningOptions (defaulting to the Account's registered key ID) and POSTs
// the serialized JWS. The Replay-Nonce of the response, if any, is retained
// for the next signing operation.
func (c *Client) postJWS(ctx context.Context, url string, payload []byte, opts *SigningOptions) (*net.NetResponse, error) {
	n, err := c.popNonce(ctx)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &SigningOptions{}
	}
	opts.NonceSource = nonce(n)

	signedBody, err := c.Sign(url, payload, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.net.PostURL(ctx, url, signedBody)
	if err != nil {
		return nil, fmt.Errorf("POST %q: %w: %w", url, acme.ErrNetwork, err)
	}
	c.storeNonce(resp.Response)
	return resp, nil
}

// postAsGet fetches the resource at the given URL with a POST-as-GET request
// (a JWS with a zero-length payload) per RFC 8555 section 6.3.
func (c *Client) postAsGet(ctx context.Context, url string) (*net.NetResponse, error) {
	return c.postJWS(ctx, url, []byte(""), nil)
}
