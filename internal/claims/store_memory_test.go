package claims

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"claimshub/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) claim(ref, introducer, email string, createdAt time.Time) *Claim {
	return &Claim{
		ID:         ref + "-id",
		Reference:  ref,
		Introducer: introducer,
		FirstName:  "Jo",
		LastName:   "Bloggs",
		Email:      email,
		Status:     StatusSubmitted,
		CreatedAt:  createdAt,
	}
}

func (s *InMemoryStoreSuite) TestCreateAndList() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "acme", "b@example.com", base.Add(time.Minute))))

	out, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("CLM-2", out[0].Reference, "newest claim comes first")
	s.Equal("CLM-1", out[1].Reference)
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateReference() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))

	err := s.store.Create(s.ctx, s.claim("CLM-1", "acme", "c@example.com", base))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestListFiltersByIntroducer() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "globex", "b@example.com", base)))

	out, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("acme", out[0].Introducer)

	all, err := s.store.ListByIntroducer(s.ctx, "", 0)
	s.Require().NoError(err)
	s.Len(all, 2, "empty introducer lists across tenants")
}

func (s *InMemoryStoreSuite) TestListHonorsLimit() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c := s.claim(NewReference(base.Add(time.Duration(i)*time.Millisecond)), "acme", "a@example.com", base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Create(s.ctx, c))
	}

	out, err := s.store.ListByIntroducer(s.ctx, "acme", 3)
	s.Require().NoError(err)
	s.Len(out, 3)
}

func (s *InMemoryStoreSuite) TestCountByEmailIsCaseInsensitiveAndTenantScoped() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "Jo@Example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "globex", "jo@example.com", base)))

	count, err := s.store.CountByEmail(s.ctx, "acme", "jo@example.com")
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.CountByEmail(s.ctx, "acme", "nobody@example.com")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *InMemoryStoreSuite) TestListCopiesAreIsolated() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))

	out, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	out[0].Status = StatusRejected

	again, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	s.Equal(StatusSubmitted, again[0].Status, "mutating a listed claim must not touch the store")
}
