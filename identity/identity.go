// Package identity tracks identity values that have already authenticated
// during this process lifetime. Membership lives only in RAM.
package identity

import "sync"

// SeenSet is a guarded set of previously-seen identity values. Reads may run
// concurrently; writes are exclusive and complete before any subsequent check
// observes the updated membership.
type SeenSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{
		seen: make(map[string]struct{}),
	}
}

// Seen reports whether id has been marked before.
func (s *SeenSet) Seen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// MarkUsed records id, returning false when it was already present. The check
// and the insert happen under one write lock so two concurrent callers cannot
// both claim a fresh identity.
func (s *SeenSet) MarkUsed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Len reports the number of identities seen so far.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
