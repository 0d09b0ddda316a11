package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"fusebot/internal/auth/models"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestGetUnknownRoomReturnsDefault() {
	session, err := s.store.Get(s.ctx, "room-1")

	s.NoError(err)
	s.Equal(models.StatusNeedCooperative, session.Status)
	s.Equal("room-1", session.RoomID)
}

func (s *MemoryStoreSuite) TestPutThenGetRoundTrip() {
	session := models.NewSession("room-2")
	session.Status = models.StatusNeedOTP
	session.Cooperative = "fusion"
	session.Credentials = &models.Credentials{Email: "me@example.com", EmployeeNumber: "FUS12345"}
	session.OTP = "123456"

	s.Require().NoError(s.store.Put(s.ctx, session))

	got, err := s.store.Get(s.ctx, "room-2")
	s.NoError(err)
	s.Equal(models.StatusNeedOTP, got.Status)
	s.Equal("fusion", got.Cooperative)
	s.Equal("123456", got.OTP)
	s.Require().NotNil(got.Credentials)
	s.Equal("FUS12345", got.Credentials.EmployeeNumber)
}

func (s *MemoryStoreSuite) TestGetDoesNotAliasStoredState() {
	session := models.NewSession("room-3")
	session.Cooperative = "fusion"
	s.Require().NoError(s.store.Put(s.ctx, session))

	got, err := s.store.Get(s.ctx, "room-3")
	s.Require().NoError(err)
	got.Cooperative = "mutated"
	got.Status = models.StatusAuthenticated

	again, err := s.store.Get(s.ctx, "room-3")
	s.NoError(err)
	s.Equal("fusion", again.Cooperative)
	s.Equal(models.StatusNeedCooperative, again.Status)
}

func (s *MemoryStoreSuite) TestPutDoesNotAliasCallerState() {
	session := models.NewSession("room-4")
	session.Cooperative = "fusion"
	s.Require().NoError(s.store.Put(s.ctx, session))

	session.Cooperative = "mutated"

	got, err := s.store.Get(s.ctx, "room-4")
	s.NoError(err)
	s.Equal("fusion", got.Cooperative)
}

func (s *MemoryStoreSuite) TestDeleteIsIdempotent() {
	session := models.NewSession("room-5")
	session.Status = models.StatusAuthenticated
	s.Require().NoError(s.store.Put(s.ctx, session))

	s.NoError(s.store.Delete(s.ctx, "room-5"))
	s.NoError(s.store.Delete(s.ctx, "room-5"))

	got, err := s.store.Get(s.ctx, "room-5")
	s.NoError(err)
	s.Equal(models.StatusNeedCooperative, got.Status)
}

func (s *MemoryStoreSuite) TestRoomsAreIsolated() {
	a := models.NewSession("room-a")
	a.Status = models.StatusAuthenticated
	s.Require().NoError(s.store.Put(s.ctx, a))

	b, err := s.store.Get(s.ctx, "room-b")
	s.NoError(err)
	s.Equal(models.StatusNeedCooperative, b.Status)
}
