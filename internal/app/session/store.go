// Package session keeps the mapping between opaque session tokens and
// authenticated principals. State is process-wide and empty at startup;
// nothing survives a restart.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/urbanthread/storefront/internal/app/domain/identity"
)

// Store is a thread-safe in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]identity.User
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]identity.User)}
}

// Create registers a fresh session for the principal and returns its token.
func (s *Store) Create(principal identity.User) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = principal
	s.mu.Unlock()

	return token
}

// Resolve looks up the principal owning the token.
func (s *Store) Resolve(token string) (identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principal, ok := s.sessions[token]
	return principal, ok
}

// Destroy removes the session. Destroying an unknown token is a no-op.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Count reports the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
