package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
)

// KeyPair holds a freshly generated certificate private key together with the
// DER encoded certificate signing request built from it. The private key is
// distinct from the ACME account key and must be retained in memory until it
// is exported as PEM after order validation.
type KeyPair struct {
	// The certificate private key. Never written to durable storage.
	Signer crypto.Signer
	// The DER encoding of a CSR naming the target domain, signed by Signer.
	CSRDER []byte
}

// NewKeyPair generates a fresh ECDSA key and a PKCS#10 CSR for the single
// given domain. The domain is used both as the CSR subject common name and as
// its sole DNS SAN.
func NewKeyPair(domain string) (*KeyPair, error) {
	if domain == "" {
		return nil, fmt.Errorf("keys: domain must not be empty")
	}

	signer, err := NewSigner("ecdsa")
	if err != nil {
		return nil, fmt.Errorf("keys: generating certificate key: %w", err)
	}

	template := x509.CertificateRequest{
		Subject: pkix.Name{
			CommonName: domain,
		},
		DNSNames: []string{domain},
	}

	csrBytes, err := x509.CreateCertificateRequest(rand.Reader, &template, signer)
	if err != nil {
		return nil, fmt.Errorf("keys: building CSR for %q: %w", domain, err)
	}

	return &KeyPair{
		Signer: signer,
		CSRDER: csrBytes,
	}, nil
}

// PrivateKeyPEM exports the certificate private key as PEM.
func (kp *KeyPair) PrivateKeyPEM() ([]byte, error) {
	pemStr, err := SignerToPEM(kp.Signer)
	if err != nil {
		return nil, err
	}
	return []byte(pemStr), nil
}
