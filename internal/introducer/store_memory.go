package introducer

import (
	"context"
	"sync"

	"claimshub/pkg/platform/sentinel"
)

// InMemoryStore holds the introducer registry. The registry is small and
// seeded at startup, so a mutex map is the production store.
type InMemoryStore struct {
	mu          sync.RWMutex
	introducers map[string]*Introducer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{introducers: make(map[string]*Introducer)}
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*Introducer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.introducers[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *in
	return &copied, nil
}

func (s *InMemoryStore) Put(_ context.Context, in *Introducer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *in
	s.introducers[in.Slug] = &copied
	return nil
}
