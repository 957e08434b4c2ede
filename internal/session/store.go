package session

import (
	"context"
	"sync"
	"time"
)

// Store caches resolved sessions keyed by token so one user action needs at
// most one remote resolve.
type Store interface {
	Get(ctx context.Context, token string) (Session, bool)
	Set(ctx context.Context, token string, s Session, ttl time.Duration)
	Delete(ctx context.Context, token string)
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is the in-process fallback when no Redis address is
// configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return Anonymous, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return Anonymous, false
	}
	return entry.session, true
}

func (s *MemoryStore) Set(_ context.Context, token string, sess Session, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{session: sess, expiresAt: time.Now().Add(ttl)}
}

func (s *MemoryStore) Delete(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

var _ Store = (*MemoryStore)(nil)
