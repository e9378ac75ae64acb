package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for tests and single-node dev runs.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	userID string
	exp    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m: make(map[string]entry),
	}
}

func (s *MemoryStore) Put(_ context.Context, sid, userID string, ttl time.Duration) error {
	s.mu.Lock()
	s.m[sid] = entry{userID: userID, exp: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (string, bool, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[sid]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, sid)
		s.mu.Unlock()
		return "", false, nil
	}

	return e.userID, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.m, sid)
	s.mu.Unlock()
	return nil
}
