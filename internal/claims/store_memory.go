package claims

import (
	"context"
	"sort"
	"strings"
	"sync"

	"claimshub/pkg/platform/sentinel"
)

// InMemoryStore keeps claims behind a mutex for tests and local development.
type InMemoryStore struct {
	mu     sync.RWMutex
	claims []*Claim
	byRef  map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byRef: make(map[string]struct{})}
}

func (s *InMemoryStore) Create(_ context.Context, claim *Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRef[claim.Reference]; exists {
		return sentinel.ErrConflict
	}
	copied := *claim
	s.claims = append(s.claims, &copied)
	s.byRef[claim.Reference] = struct{}{}
	return nil
}

func (s *InMemoryStore) ListByIntroducer(_ context.Context, introducer string, limit int) ([]*Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Claim, 0, len(s.claims))
	for _, c := range s.claims {
		if introducer != "" && c.Introducer != introducer {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) CountByEmail(_ context.Context, introducer, email string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.claims {
		if c.Introducer == introducer && strings.EqualFold(c.Email, email) {
			count++
		}
	}
	return count, nil
}
