package client

import (
	"crypto"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/confidant-sh/confidant/acme/keys"
)

// SigningOptions allows specifying signature related options when calling the
// Client's Sign function.
type SigningOptions struct {
	// If true, embed the Account's public key as a JWK in the signed JWS
	// instead of using a KeyID header. This is required for the NewAccount
	// endpoint. Setting EmbedKey to true is mutually exclusive with a non-empty
	// KeyID.
	EmbedKey bool
	// If not-empty, a KeyID value to use for the JWS Key ID header to identify
	// the ACME account. If empty the Account's ID field will be used. Providing
	// a KeyID is mutually exclusive with setting EmbedKey to true.
	KeyID string
	// If not-nil, a private key to use to sign the JWS. If nil the Account's
	// key is used.
	Signer crypto.Signer
	// NonceSource provides the Replay-Nonce header value for the produced JWS.
	NonceSource jose.NonceSource
}

// validate checks that the SigningOptions are sensible. Because it checks
// that the Signer field is not nil it must only be called after populating
// defaults from the Account.
func (opts *SigningOptions) validate() error {
	if opts.KeyID != "" && opts.EmbedKey {
		return fmt.Errorf("SigningOptions validate: cannot specify both KeyID and EmbedKey")
	}
	if opts.KeyID == "" && !opts.EmbedKey {
		return fmt.Errorf("SigningOptions validate: you must specify a KeyID or EmbedKey")
	}
	if opts.NonceSource == nil {
		return fmt.Errorf("SigningOptions validate: you must specify a NonceSource")
	}
	if opts.Signer == nil {
		return fmt.Errorf("SigningOptions validate: you must specify a private key")
	}
	return nil
}

// Sign produces a serialized JWS for the provided data (with a protected URL
// header) according to the SigningOptions provided. If no Signer is specified
// in the SigningOptions the Account's key is used. If the SigningOptions
// specify not to embed a JWK but do not specify a Key ID the Account's ID is
// used as the JWS Key ID.
func (c *Client) Sign(url string, data []byte, opts *SigningOptions) ([]byte, error) {
	if opts == nil {
		opts = &SigningOptions{}
	}
	if opts.Signer == nil && c.Account == nil {
		return nil, errors.New("Account is nil and no Signer was specified in SigningOptions")
	}
	if opts.Signer == nil {
		opts.Signer = c.Account.Signer
	}

	if !opts.EmbedKey && opts.KeyID == "" {
		if c.Account == nil || c.Account.ID == "" {
			return nil, errors.New(
				"SigningOptions EmbedKey was false, no KeyID was specified, and " +
					"the Account has not been registered")
		}
		opts.KeyID = c.Account.ID
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.EmbedKey {
		return signEmbedded(url, data, opts)
	}
	return signKeyID(url, data, opts)
}

func signEmbedded(url string, data []byte, opts *SigningOptions) ([]byte, error) {
	signingKey := jose.SigningKey{
		Key:       opts.Signer,
		Algorithm: jose.ES256,
	}

	signer, err := jose.NewSigner(signingKey, &jose.SignerOptions{
		NonceSource: opts.NonceSource,
		EmbedJWK:    true,
		ExtraHeaders: map[jose.HeaderKey]interface{}{
			"url": url,
		},
	})
	if err != nil {
		return nil, err
	}

	return sign(signer, data)
}

func signKeyID(url string, data []byte, opts *SigningOptions) ([]byte, error) {
	signerKey := keys.SigningKeyForSigner(opts.Signer, opts.KeyID)

	joseOpts := &jose.SignerOptions{
		NonceSource: opts.NonceSource,
		ExtraHeaders: map[jose.HeaderKey]interface{}{
			"url": url,
		},
	}

	signer, err := jose.NewSigner(signerKey, joseOpts)
	if err != nil {
		return nil, err
	}

	return sign(signer, data)
}

func sign(signer jose.Signer, data []byte) ([]byte, error) {
	signed, err := signer.Sign(data)
	if err != nil {
		return nil, err
	}

	return []byte(signed.FullSerialize()), nil
}
