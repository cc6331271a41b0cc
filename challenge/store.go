// Package challenge provides the in-memory staging store for HTTP-01 key
// authorizations and the HTTP surface the certificate authority probes during
// validation.
package challenge

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get for tokens that were never staged. The HTTP
// surface reports it as a 404; it is not fatal to the issuance sequence but
// indicates a timing race if observed during validation.
var ErrNotFound = errors.New("challenge: token not staged")

// Store maps challenge tokens to their key authorization values. It lives
// only in memory and is shared between the issuance task (writer) and the
// challenge-serving HTTP surface (readers). Writes are rare and keyed by
// distinct tokens, so a single RWMutex suffices.
type Store struct {
	mu     sync.RWMutex
	staged map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		staged: make(map[string]string),
	}
}

// Put records the key authorization for a token, overwriting any prior value
// for that token.
func (s *Store) Put(token, keyAuth string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[token] = keyAuth
}

// Get returns the exact key authorization previously staged for the token,
// with no transformation, or ErrNotFound.
func (s *Store) Get(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keyAuth, ok := s.staged[token]
	if !ok {
		return "", ErrNotFound
	}
	return keyAuth, nil
}

// Len reports the number of staged tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged)
}
