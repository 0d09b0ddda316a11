// Package service implements the conversational authentication state machine.
//
// Each room moves through NEED_COOPERATIVE, NEED_CREDENTIALS, NEED_OTP and
// AUTHENTICATED. Advance consumes one inbound message and produces exactly
// one reply; callers serialize invocations per room.
package service

import (
	"context"
	"log/slog"
	"time"

	"fusebot/internal/audit"
	"fusebot/internal/auth/metrics"
	"fusebot/internal/auth/models"
	"fusebot/pkg/platform/middleware/request"
)

// Reply is the single user-facing response to one inbound message, together
// with the session status after the message was applied.
type Reply struct {
	Text   string
	Status models.Status
}

type Service struct {
	store          SessionStore
	provider       IdentityProvider
	resolver       CooperativeResolver
	operations     map[string]Operation
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store SessionStore, identity IdentityProvider, resolver CooperativeResolver, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		provider:   identity,
		resolver:   resolver,
		operations: make(map[string]Operation),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// RegisterOperation makes a protected action resumable after authentication.
// Registration happens at wiring time, before the service receives traffic.
func (s *Service) RegisterOperation(name string, op Operation) {
	s.operations[name] = op
}

// Session returns the current session for a room. A store failure degrades to
// a fresh session rather than an error so status queries always answer.
func (s *Service) Session(ctx context.Context, roomID string) *models.Session {
	return s.loadSession(ctx, roomID)
}

// loadSession reads the room's session, absorbing store failures: the caller
// always gets a usable session, with LastError annotated on degradation.
func (s *Service) loadSession(ctx context.Context, roomID string) *models.Session {
	session, err := s.store.Get(ctx, roomID)
	if err != nil {
		s.logger.WarnContext(ctx, "session read degraded, starting fresh",
			"room_id", roomID,
			"error", err,
		)
		s.metrics.IncrementDegradedRead()
		session.LastError = err.Error()
	}
	return session
}

// persist writes the session back, stamping UpdatedAt. The store is the
// source of truth: a write failure is returned so the caller replaces its
// chosen reply with a failure notice instead of claiming a transition the
// store never recorded.
func (s *Service) persist(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = s.now()
	if err := s.store.Put(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "session write failed",
			"room_id", session.RoomID,
			"status", session.Status,
			"error", err,
		)
		return err
	}
	return nil
}

// storageFailure is the reply for a failed session write. The status reports
// the state the store still holds, not the transition that was attempted.
func storageFailure(status models.Status) *Reply {
	return &Reply{Text: replyStorageFailure, Status: status}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	event.RequestID = request.GetRequestID(ctx)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"room_id", event.RoomID,
			"error", err,
		)
	}
}
