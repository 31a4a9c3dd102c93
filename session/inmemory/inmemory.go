package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/wanirfan/atlast/internal/agent/core"
)

type entry struct {
	messages  []core.Message
	expiresAt time.Time
}

// Store keeps history in process memory, expiring idle sessions after
// the TTL. Suitable for single-instance deployments and tests.
type Store struct {
	ttl     time.Duration
	entries map[string]*entry
	mu      sync.RWMutex
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{ttl: ttl, entries: make(map[string]*entry)}
}

func key(sessionID string, domain core.Domain) string {
	return string(domain) + ":" + sessionID
}

func (s *Store) History(ctx context.Context, sessionID string, domain core.Domain) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key(sessionID, domain)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	out := make([]core.Message, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, domain core.Domain, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(sessionID, domain)
	e, ok := s.entries[k]
	if !ok || time.Now().After(e.expiresAt) {
		e = &entry{}
		s.entries[k] = e
	}
	e.messages = append(e.messages, msgs...)
	e.expiresAt = time.Now().Add(s.ttl)
	return nil
}

func (s *Store) Clear(ctx context.Context, sessionID string, domain core.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(sessionID, domain))
	return nil
}
