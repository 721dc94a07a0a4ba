package draft

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

func (s *InMemoryStoreSuite) TestLoadWithoutSaveIsEmpty() {
	d, err := s.store.Load(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Empty(d)
	s.NotNil(d, "an absent draft is an empty draft, never nil")
}

func (s *InMemoryStoreSuite) TestSaveLoadRoundTrip() {
	d := Draft{"first_name": "Jo", "email": "jo@example.com"}
	s.Require().NoError(s.store.Save(s.ctx, "sess", "acme", d))

	loaded, err := s.store.Load(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Equal(d, loaded)
}

func (s *InMemoryStoreSuite) TestDraftsAreScopedBySessionAndTenant() {
	s.Require().NoError(s.store.Save(s.ctx, "sess-1", "acme", Draft{"first_name": "Jo"}))

	other, err := s.store.Load(s.ctx, "sess-2", "acme")
	s.Require().NoError(err)
	s.Empty(other, "another session sees nothing")

	other, err = s.store.Load(s.ctx, "sess-1", "globex")
	s.Require().NoError(err)
	s.Empty(other, "another tenant sees nothing")
}

func (s *InMemoryStoreSuite) TestCorruptDraftLoadsEmpty() {
	s.store.entries[formKey("sess", "acme")] = "{not json"

	d, err := s.store.Load(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Empty(d)
}

func (s *InMemoryStoreSuite) TestClear() {
	s.Require().NoError(s.store.Save(s.ctx, "sess", "acme", Draft{"first_name": "Jo"}))
	s.Require().NoError(s.store.Clear(s.ctx, "sess", "acme"))

	d, err := s.store.Load(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Empty(d)
}

func (s *InMemoryStoreSuite) TestStashRoundTrip() {
	snap := Snapshot{
		Fields:      Draft{"first_name": "Jo"},
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Signature:   "data:image/png;base64,abc",
		Reference:   "CLM-1",
	}
	s.Require().NoError(s.store.Stash(s.ctx, "sess", "acme", snap))

	loaded, err := s.store.LoadStash(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Equal(snap, loaded)
	s.True(loaded.Submitted())
}

func (s *InMemoryStoreSuite) TestLoadStashMissing() {
	_, err := s.store.LoadStash(s.ctx, "sess", "acme")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestClearStash() {
	s.Require().NoError(s.store.Stash(s.ctx, "sess", "acme", Snapshot{Fields: Draft{}}))
	s.Require().NoError(s.store.ClearStash(s.ctx, "sess", "acme"))

	_, err := s.store.LoadStash(s.ctx, "sess", "acme")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestStashDoesNotTouchDraft() {
	s.Require().NoError(s.store.Save(s.ctx, "sess", "acme", Draft{"first_name": "Jo"}))
	s.Require().NoError(s.store.Stash(s.ctx, "sess", "acme", Snapshot{Fields: Draft{"first_name": "Jo"}}))

	d, err := s.store.Load(s.ctx, "sess", "acme")
	s.Require().NoError(err)
	s.Equal("Jo", d["first_name"], "draft and holding area live under separate keys")
}
