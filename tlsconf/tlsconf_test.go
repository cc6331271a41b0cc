package tlsconf

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSigned mints a throwaway self-signed server certificate for domain.
func selfSigned(t *testing.T, domain string) (chainPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	chainPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return chainPEM, keyPEM
}

func TestActivate(t *testing.T) {
	chainPEM, keyPEM := selfSigned(t, "example.com")

	conf, err := Activate(chainPEM, keyPEM)
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS12), conf.MinVersion)
	require.Len(t, conf.Certificates, 1)
	require.NotNil(t, conf.Certificates[0].Leaf)
	assert.Equal(t, "example.com", conf.Certificates[0].Leaf.Subject.CommonName)
	assert.Contains(t, conf.NextProtos, "h2")
	assert.Contains(t, conf.NextProtos, "http/1.1")
}

func TestActivateServesHandshake(t *testing.T) {
	chainPEM, keyPEM := selfSigned(t, "example.com")

	conf, err := Activate(chainPEM, keyPEM)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
	srv.TLS = conf
	srv.StartTLS()
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(conf.Certificates[0].Leaf)
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs:    pool,
				ServerName: "example.com",
			},
		},
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestActivateEmptyChain(t *testing.T) {
	_, keyPEM := selfSigned(t, "example.com")

	_, err := Activate(nil, keyPEM)
	require.ErrorIs(t, err, ErrActivation)
}

func TestActivateMismatchedKey(t *testing.T) {
	chainPEM, _ := selfSigned(t, "example.com")
	_, otherKeyPEM := selfSigned(t, "example.com")

	_, err := Activate(chainPEM, otherKeyPEM)
	require.ErrorIs(t, err, ErrActivation)
}

func TestActivateGarbageInput(t *testing.T) {
	_, err := Activate([]byte("not pem"), []byte("also not pem"))
	require.ErrorIs(t, err, ErrActivation)
}
