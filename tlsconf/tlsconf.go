// Package tlsconf turns in-memory issuance artifacts into a handshake-ready
// TLS server configuration.
package tlsconf

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrActivation indicates the certificate chain or private key could not be
// parsed into a servable TLS configuration.
var ErrActivation = errors.New("tlsconf: cannot activate certificate")

// Activate parses a PEM certificate chain (leaf first) and a PEM private key
// into a server-side TLS configuration requiring no client certificate. The
// inputs exist only in memory; nothing is written to durable storage.
//
// Whether the key corresponds to the leaf certificate's public key is checked
// by the keypair parse itself; a chain with zero certificates or an
// unparsable key fails with ErrActivation before any handshake is attempted.
func Activate(chainPEM, keyPEM []byte) (*tls.Config, error) {
	if countCertificates(chainPEM) == 0 {
		return nil, fmt.Errorf("%w: chain contains no certificates", ErrActivation)
	}

	cert, err := tls.X509KeyPair(chainPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrActivation, err)
	}

	// Populate Leaf so callers can inspect the served identity without
	// re-parsing.
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing leaf: %w", ErrActivation, err)
	}
	cert.Leaf = leaf

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		NextProtos: []string{
			"h2",
			"http/1.1",
		},
	}, nil
}

// countCertificates counts the CERTIFICATE blocks in a PEM bundle.
func countCertificates(chainPEM []byte) int {
	count := 0
	rest := chainPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return count
		}
		if block.Type == "CERTIFICATE" {
			count++
		}
	}
}
