package draft

import (
	"context"
	"encoding/json"
	"sync"

	"claimshub/pkg/platform/sentinel"
)

// InMemoryStore keeps drafts as JSON strings behind a mutex. It backs local
// development and tests; production deployments use the Redis store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]string)}
}

func (s *InMemoryStore) Load(_ context.Context, sessionID, tenant string) (Draft, error) {
	s.mu.RLock()
	raw, ok := s.entries[formKey(sessionID, tenant)]
	s.mu.RUnlock()
	if !ok {
		return Draft{}, nil
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil || d == nil {
		// Corrupt data reads as "no draft"; the flow starts fresh.
		return Draft{}, nil
	}
	return d, nil
}

func (s *InMemoryStore) Save(_ context.Context, sessionID, tenant string, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[formKey(sessionID, tenant)] = string(raw)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID, tenant string) error {
	s.mu.Lock()
	delete(s.entries, formKey(sessionID, tenant))
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Stash(_ context.Context, sessionID, tenant string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[dataKey(sessionID, tenant)] = string(raw)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) LoadStash(_ context.Context, sessionID, tenant string) (Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.entries[dataKey(sessionID, tenant)]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, sentinel.ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return snap, nil
}

func (s *InMemoryStore) ClearStash(_ context.Context, sessionID, tenant string) error {
	s.mu.Lock()
	delete(s.entries, dataKey(sessionID, tenant))
	s.mu.Unlock()
	return nil
}
