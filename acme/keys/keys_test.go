package keys

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAuth(t *testing.T) {
	signer, err := NewSigner("ecdsa")
	require.NoError(t, err)

	token := "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ"
	keyAuth := KeyAuth(signer, token)

	parts := strings.SplitN(keyAuth, ".", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, token, parts[0])

	// The second component is the base64url SHA-256 JWK thumbprint.
	thumb, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, thumb, 32)

	// Same key, same token, same authorization.
	assert.Equal(t, keyAuth, KeyAuth(signer, token))

	other, err := NewSigner("ecdsa")
	require.NoError(t, err)
	assert.NotEqual(t, keyAuth, KeyAuth(other, token))
}

func TestNewSigner(t *testing.T) {
	ec, err := NewSigner("ecdsa")
	require.NoError(t, err)
	require.IsType(t, &ecdsa.PrivateKey{}, ec)

	_, err = NewSigner("dsa")
	require.Error(t, err)
}

func TestSignerToPEMRoundTrip(t *testing.T) {
	signer, err := NewSigner("ecdsa")
	require.NoError(t, err)

	pemStr, err := SignerToPEM(signer)
	require.NoError(t, err)

	block, rest := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)
	assert.Empty(t, rest)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)

	parsed, err := x509.ParseECPrivateKey(block.Bytes)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(signer))
}
