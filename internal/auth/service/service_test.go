package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
	"fusebot/internal/auth/service/mocks"
	"fusebot/internal/auth/store"
	"fusebot/internal/provider"
	"fusebot/internal/tenant"
	domainerrors "fusebot/pkg/domain-errors"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	store      *store.InMemoryStore
	identity   *mocks.MockIdentityProvider
	auditStore *audit.InMemoryStore
	svc        *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewMemory()
	s.identity = mocks.NewMockIdentityProvider(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	resolver := tenant.NewResolver(tenant.Default(), slog.Default())
	s.svc = NewService(s.store, s.identity, resolver,
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithClock(func() time.Time { return fixedNow }),
	)
	s.ctx = context.Background()
}

func (s *ServiceSuite) session(roomID string) *models.Session {
	session, err := s.store.Get(s.ctx, roomID)
	s.Require().NoError(err)
	return session
}

func (s *ServiceSuite) TestFullAuthenticationFlow() {
	const roomID = "room-flow"

	s.identity.EXPECT().
		Authenticate(gomock.Any(), "me@example.com", "FUS12345", "fusion").
		Return(&provider.Grant{OTP: "123456", Token: "tok-abc"}, nil)

	reply := s.svc.Advance(s.ctx, roomID, "Fusion")
	s.Contains(reply.Text, `"fusion"`)
	s.Equal(models.StatusNeedCredentials, reply.Status)

	reply = s.svc.Advance(s.ctx, roomID, "me@example.com FUS12345")
	s.Contains(reply.Text, "An OTP has been sent to me@example.com")
	s.Equal(models.StatusNeedOTP, reply.Status)

	stored := s.session(roomID)
	s.Equal("123456", stored.OTP)
	s.Equal("tok-abc", stored.Token)
	s.Require().NotNil(stored.OtpGeneratedAt)
	s.True(stored.OtpGeneratedAt.Equal(fixedNow))

	reply = s.svc.VerifyOTP(s.ctx, roomID, "123456")
	s.Equal(replyAuthSuccess, reply.Text)
	s.Equal(models.StatusAuthenticated, reply.Status)

	stored = s.session(roomID)
	s.True(stored.Authenticated())
	s.Empty(stored.OTP)
	s.Equal("tok-abc", stored.Token)
	s.Require().NotNil(stored.VerifiedAt)
}

func (s *ServiceSuite) TestUnrecognizedCooperativeEchoesInput() {
	reply := s.svc.Advance(s.ctx, "room-1", "ZZZZZZ")

	s.Contains(reply.Text, `"ZZZZZZ"`)
	s.Equal(models.StatusNeedCooperative, reply.Status)
	s.Equal(models.StatusNeedCooperative, s.session("room-1").Status)
}

func (s *ServiceSuite) TestCooperativeResolutionEmitsAudit() {
	s.svc.Advance(s.ctx, "room-2", "Fusion")

	events, err := s.auditStore.ListByRoom(s.ctx, "room-2")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventCooperativeResolved, events[0].Action)
	s.Equal("fusion", events[0].Cooperative)
}

func (s *ServiceSuite) TestMissingCredentials() {
	s.svc.Advance(s.ctx, "room-3", "Fusion")

	reply := s.svc.Advance(s.ctx, "room-3", "just some words")

	s.Contains(reply.Text, "I need both a valid email and employee number")
	s.Equal(models.StatusNeedCredentials, reply.Status)
}

func (s *ServiceSuite) TestInvalidEmailRejected() {
	s.svc.Advance(s.ctx, "room-4", "Fusion")

	reply := s.svc.Advance(s.ctx, "room-4", "me@ex@ample.com FUS12345")

	s.Contains(reply.Text, "is not valid")
	s.Equal(models.StatusNeedCredentials, reply.Status)
}

func (s *ServiceSuite) TestProviderFailureKeepsCredentialsStep() {
	s.svc.Advance(s.ctx, "room-5", "Fusion")

	s.identity.EXPECT().
		Authenticate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domainerrors.New(domainerrors.CodeUpstream, "invalid credentials"))

	reply := s.svc.Advance(s.ctx, "room-5", "me@example.com FUS12345")

	s.Equal(replyAuthFailed, reply.Text)
	s.Equal(models.StatusNeedCredentials, reply.Status)

	// The generic reply must not leak upstream details.
	s.NotContains(reply.Text, "invalid credentials")

	stored := s.session("room-5")
	s.Equal(models.StatusNeedCredentials, stored.Status)
	s.Nil(stored.Credentials)
}

func (s *ServiceSuite) TestAuditNeverCarriesRawCredentials() {
	s.svc.Advance(s.ctx, "room-6", "Fusion")
	s.identity.EXPECT().
		Authenticate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&provider.Grant{OTP: "654321", Token: "tok"}, nil)
	s.svc.Advance(s.ctx, "room-6", "somebody@example.com FUS99999")

	events, err := s.auditStore.ListByRoom(s.ctx, "room-6")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	issued := events[1]
	s.Equal(audit.EventOTPIssued, issued.Action)
	s.NotContains(issued.MaskedEmail, "somebody@")
	s.Contains(issued.MaskedEmail, "@example.com")
}

func (s *ServiceSuite) TestOTPPromptRepeatedWhileWaiting() {
	s.seedSession("room-7", models.StatusNeedOTP, "111111")

	reply := s.svc.Advance(s.ctx, "room-7", "what do I do now")

	s.Equal(replyOTPPrompt, reply.Text)
	s.Equal(models.StatusNeedOTP, reply.Status)
}

func (s *ServiceSuite) TestAlreadyAuthenticated() {
	s.seedSession("room-8", models.StatusAuthenticated, "")

	reply := s.svc.Advance(s.ctx, "room-8", "hello again")

	s.Equal(replyAlreadyAuthenticated, reply.Text)
}

func (s *ServiceSuite) TestOTPMismatchAllowsRetry() {
	s.seedSession("room-9", models.StatusNeedOTP, "123456")

	reply := s.svc.VerifyOTP(s.ctx, "room-9", "000000")
	s.Equal(replyOTPMismatch, reply.Text)
	s.Equal(models.StatusNeedOTP, reply.Status)

	reply = s.svc.VerifyOTP(s.ctx, "room-9", "123456")
	s.Equal(models.StatusAuthenticated, reply.Status)
}

func (s *ServiceSuite) TestVerifyOTPResumesPendingOperation() {
	session := s.seedSession("room-10", models.StatusNeedOTP, "123456")
	session.PostAuthAction = "LOAN"
	session.Token = "tok-resume"
	s.Require().NoError(s.store.Put(s.ctx, session))

	op := mocks.NewMockOperation(s.ctrl)
	op.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "").
		DoAndReturn(func(_ context.Context, sess *models.Session, _ string) (string, error) {
			s.Equal("tok-resume", sess.Token)
			s.True(sess.Authenticated())
			return "Your loan balance is 250,000.", nil
		})
	s.svc.RegisterOperation("LOAN", op)

	reply := s.svc.VerifyOTP(s.ctx, "room-10", "123456")

	s.Contains(reply.Text, "successfully authenticated")
	s.Contains(reply.Text, "Your loan balance is 250,000.")
	s.Equal(models.StatusAuthenticated, reply.Status)

	stored := s.session("room-10")
	s.Empty(stored.PostAuthAction)
}

func (s *ServiceSuite) TestVerifyOTPUnregisteredOperationFallsBack() {
	session := s.seedSession("room-11", models.StatusNeedOTP, "123456")
	session.PostAuthAction = "UNKNOWN_OP"
	s.Require().NoError(s.store.Put(s.ctx, session))

	reply := s.svc.VerifyOTP(s.ctx, "room-11", "123456")

	s.Equal(replyAuthSuccess, reply.Text)
	s.Equal(models.StatusAuthenticated, reply.Status)
}

func (s *ServiceSuite) TestVerifyOTPOutsideOTPStepDelegatesToAdvance() {
	reply := s.svc.VerifyOTP(s.ctx, "room-12", "123456")

	// NEED_COOPERATIVE treats the digits as a cooperative name.
	s.Contains(reply.Text, "couldn't recognize")
	s.Equal(models.StatusNeedCooperative, reply.Status)
}

func (s *ServiceSuite) TestReset() {
	s.seedSession("room-13", models.StatusAuthenticated, "")

	reply := s.svc.Reset(s.ctx, "room-13")

	s.Equal(replyReset, reply.Text)
	s.Equal(models.StatusNeedCooperative, reply.Status)
	s.Equal(models.StatusNeedCooperative, s.session("room-13").Status)

	events, err := s.auditStore.ListByRoom(s.ctx, "room-13")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventSessionReset, events[0].Action)
}

func (s *ServiceSuite) TestRequireAuthGatesUnauthenticated() {
	session, reply := s.svc.RequireAuth(s.ctx, "room-14", "LOAN", "Which cooperative do you belong to?")

	s.Nil(session)
	s.Require().NotNil(reply)
	s.Equal("Which cooperative do you belong to?", reply.Text)
	s.Equal(models.StatusNeedCooperative, reply.Status)

	stored := s.session("room-14")
	s.Equal("LOAN", stored.PostAuthAction)
}

func (s *ServiceSuite) TestRequireAuthPassesAuthenticated() {
	seeded := s.seedSession("room-15", models.StatusAuthenticated, "")
	seeded.Token = "tok"
	s.Require().NoError(s.store.Put(s.ctx, seeded))

	session, reply := s.svc.RequireAuth(s.ctx, "room-15", "LOAN", "prompt")

	s.Nil(reply)
	s.Require().NotNil(session)
	s.Equal("tok", session.Token)
}

func (s *ServiceSuite) TestExpirePreservesPendingOperation() {
	s.seedSession("room-16", models.StatusAuthenticated, "")

	reply := s.svc.Expire(s.ctx, "room-16", "LOAN")

	s.Equal(replySessionExpired, reply.Text)
	s.Equal(models.StatusNeedCooperative, reply.Status)

	stored := s.session("room-16")
	s.Equal(models.StatusNeedCooperative, stored.Status)
	s.Equal("LOAN", stored.PostAuthAction)

	events, err := s.auditStore.ListByRoom(s.ctx, "room-16")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventSessionExpired, events[0].Action)
}

func (s *ServiceSuite) TestUnknownStatusRestartsFlow() {
	session := models.NewSession("room-17")
	session.Status = models.Status("LEGACY_STATE")
	session.PostAuthAction = "LOAN"
	s.Require().NoError(s.store.Put(s.ctx, session))

	reply := s.svc.Advance(s.ctx, "room-17", "hello")

	s.Equal(replyStartAuth, reply.Text)
	s.Equal(models.StatusNeedCooperative, reply.Status)

	stored := s.session("room-17")
	s.Equal(models.StatusNeedCooperative, stored.Status)
	s.Equal("LOAN", stored.PostAuthAction)
}

// failingPutStore simulates a session backend that still serves reads but
// rejects every write.
type failingPutStore struct {
	*store.InMemoryStore
}

func (f *failingPutStore) Put(context.Context, *models.Session) error {
	return domainerrors.New(domainerrors.CodeStorage, "redis write refused")
}

func (s *ServiceSuite) withFailingWrites() {
	resolver := tenant.NewResolver(tenant.Default(), slog.Default())
	s.svc = NewService(&failingPutStore{InMemoryStore: s.store}, s.identity, resolver,
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func (s *ServiceSuite) TestStoreWriteFailureDoesNotClaimProgress() {
	s.seedSession("room-18", models.StatusNeedCredentials, "")
	s.withFailingWrites()

	s.identity.EXPECT().
		Authenticate(gomock.Any(), "me@example.com", "FUS12345", "fusion").
		Return(&provider.Grant{OTP: "654321", Token: "tok-x"}, nil)

	reply := s.svc.Advance(s.ctx, "room-18", "me@example.com FUS12345")

	s.Equal(replyStorageFailure, reply.Text)
	s.Equal(models.StatusNeedCredentials, reply.Status)

	// The store never saw the transition, so nothing OTP-shaped may leak
	// into the record the next message reads.
	stored := s.session("room-18")
	s.Equal(models.StatusNeedCredentials, stored.Status)
	s.Empty(stored.OTP)
	s.Empty(stored.Token)
}

func (s *ServiceSuite) TestStoreWriteFailureDuringOTPVerification() {
	s.seedSession("room-19", models.StatusNeedOTP, "123456")
	s.withFailingWrites()

	reply := s.svc.VerifyOTP(s.ctx, "room-19", "123456")

	s.Equal(replyStorageFailure, reply.Text)
	s.Equal(models.StatusNeedOTP, reply.Status)

	stored := s.session("room-19")
	s.Equal(models.StatusNeedOTP, stored.Status)
	s.Equal("123456", stored.OTP)
}

func (s *ServiceSuite) TestStoreWriteFailureDuringGating() {
	s.withFailingWrites()

	session, reply := s.svc.RequireAuth(s.ctx, "room-20", "LOAN", "please authenticate")

	s.Nil(session)
	s.Require().NotNil(reply)
	s.Equal(replyStorageFailure, reply.Text)
}

func (s *ServiceSuite) seedSession(roomID string, status models.Status, otp string) *models.Session {
	session := models.NewSession(roomID)
	session.Status = status
	session.Cooperative = "fusion"
	session.Credentials = &models.Credentials{Email: "me@example.com", EmployeeNumber: "FUS12345"}
	session.OTP = otp
	s.Require().NoError(s.store.Put(s.ctx, session))
	return session.Clone()
}
