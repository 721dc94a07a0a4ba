// Package introducer is the registry of campaign introducers (tenants). An
// introducer scopes a funnel instance: its slug prefixes every route and
// storage key, and claims are attributed to it.
package introducer

import (
	"context"
	"fmt"
	"strings"
	"time"

	dErrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/sentinel"
)

// Status gates whether an introducer's funnel accepts visitors.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Introducer owns one funnel instance.
//
// Invariants:
//   - Slug is non-empty, lowercase, and unique
//   - An inactive introducer's funnel entry is refused; existing stored
//     claims remain queryable from the dashboard
type Introducer struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Introducer) IsActive() bool { return i.Status == StatusActive }

// Store abstracts introducer lookup.
type Store interface {
	FindBySlug(ctx context.Context, slug string) (*Introducer, error)
	Put(ctx context.Context, in *Introducer) error
}

// Service resolves introducer slugs into active tenants.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve returns the active introducer for slug. Unknown and inactive slugs
// are indistinguishable to visitors: both end the funnel before it starts.
func (s *Service) Resolve(ctx context.Context, slug string) (*Introducer, error) {
	in, err := s.store.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		if err == sentinel.ErrNotFound {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown introducer")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "resolve introducer", err)
	}
	if !in.IsActive() {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown introducer")
	}
	return in, nil
}

// Seed loads introducers from "slug=Name" pairs, activating each.
func (s *Service) Seed(ctx context.Context, pairs []string, now time.Time) error {
	for _, pair := range pairs {
		slug, name, found := strings.Cut(pair, "=")
		slug = strings.ToLower(strings.TrimSpace(slug))
		if slug == "" {
			continue
		}
		if !found || strings.TrimSpace(name) == "" {
			name = slug
		}
		in := &Introducer{
			Slug:      slug,
			Name:      strings.TrimSpace(name),
			Status:    StatusActive,
			CreatedAt: now,
		}
		if err := s.store.Put(ctx, in); err != nil {
			return fmt.Errorf("seed introducer %q: %w", slug, err)
		}
	}
	return nil
}
