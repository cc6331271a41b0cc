package keys

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyPair(t *testing.T) {
	kp, err := NewKeyPair("example.com")
	require.NoError(t, err)
	require.NotNil(t, kp.Signer)

	csr, err := x509.ParseCertificateRequest(kp.CSRDER)
	require.NoError(t, err)
	require.NoError(t, csr.CheckSignature())

	assert.Equal(t, "example.com", csr.Subject.CommonName)
	assert.Equal(t, []string{"example.com"}, csr.DNSNames)
}

func TestNewKeyPairEmptyDomain(t *testing.T) {
	_, err := NewKeyPair("")
	require.Error(t, err)
}

func TestKeyPairPrivateKeyPEM(t *testing.T) {
	kp, err := NewKeyPair("example.com")
	require.NoError(t, err)

	keyPEM, err := kp.PrivateKeyPEM()
	require.NoError(t, err)

	block, _ := pem.Decode(keyPEM)
	require.NotNil(t, block)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)

	parsed, err := x509.ParseECPrivateKey(block.Bytes)
	require.NoError(t, err)
	// The exported key must be the one the CSR was signed with.
	assert.True(t, parsed.Equal(kp.Signer))
}
