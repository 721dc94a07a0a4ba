//go:build integration

package claims_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"claimshub/internal/claims"
	"claimshub/pkg/platform/sentinel"
	"claimshub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store *claims.PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	pg := containers.GetManager().GetPostgres(s.T())
	s.store = claims.NewPostgres(pg.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	pg := containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(pg.TruncateTables(s.ctx, "claims"))
}

func (s *PostgresStoreSuite) claim(ref, introducer, email string, createdAt time.Time) *claims.Claim {
	return &claims.Claim{
		ID:               uuid.NewString(),
		Reference:        ref,
		Introducer:       introducer,
		Title:            "Mr",
		FirstName:        "Jo",
		LastName:         "Bloggs",
		DOBDay:           "14",
		DOBMonth:         "06",
		DOBYear:          "1990",
		Email:            email,
		Phone:            "07123456789",
		AddressLine1:     "1 High Street",
		City:             "Leeds",
		Postcode:         "LS1 1AA",
		HasCarFinance:    "Yes",
		MultipleVehicles: "No",
		Signature:        "data:image/png;base64,abc",
		Status:           claims.StatusSubmitted,
		SubmittedAt:      createdAt,
		CreatedAt:        createdAt,
	}
}

func (s *PostgresStoreSuite) TestCreateAndList() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "acme", "b@example.com", base.Add(time.Minute))))

	out, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("CLM-2", out[0].Reference, "newest first")
	s.Equal("Jo", out[0].FirstName)
	s.Equal(claims.StatusSubmitted, out[0].Status)
	s.WithinDuration(base.Add(time.Minute), out[0].CreatedAt, time.Second)
}

func (s *PostgresStoreSuite) TestCreateRejectsDuplicateReference() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))

	err := s.store.Create(s.ctx, s.claim("CLM-1", "acme", "b@example.com", base))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListFiltersAndLimits() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "a@example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "globex", "b@example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-3", "acme", "c@example.com", base.Add(time.Minute))))

	acme, err := s.store.ListByIntroducer(s.ctx, "acme", 0)
	s.Require().NoError(err)
	s.Len(acme, 2)

	limited, err := s.store.ListByIntroducer(s.ctx, "acme", 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal("CLM-3", limited[0].Reference)

	all, err := s.store.ListByIntroducer(s.ctx, "", 0)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PostgresStoreSuite) TestCountByEmail() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-1", "acme", "Jo@Example.com", base)))
	s.Require().NoError(s.store.Create(s.ctx, s.claim("CLM-2", "globex", "jo@example.com", base)))

	count, err := s.store.CountByEmail(s.ctx, "acme", "jo@example.com")
	s.Require().NoError(err)
	s.Equal(1, count, "matching is case-insensitive and tenant-scoped")
}
