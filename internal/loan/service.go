// Package loan implements the protected loan-information operation: a gate
// that forces authentication before any fetch, the provider call itself, and
// rendering of the result.
package loan

import (
	"context"
	"encoding/json"
	"log/slog"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
	"fusebot/internal/auth/service"
	domainerrors "fusebot/pkg/domain-errors"
)

// OperationName is the identifier the auth flow uses to resume an
// interrupted loan lookup after authentication completes.
const OperationName = "LOAN"

const (
	gatePrompt     = "To check your loan information, I'll need to verify your identity first. Which cooperative do you belong to?"
	replyLoanError = "I encountered an error while retrieving your loan information. Please try again."
)

// AuthGate is the slice of the auth service the loan flow needs: admission,
// expiry handling, and failure bookkeeping.
type AuthGate interface {
	RequireAuth(ctx context.Context, roomID, operation, prompt string) (*models.Session, *service.Reply)
	Expire(ctx context.Context, roomID, operation string) *service.Reply
	Fail(ctx context.Context, roomID, operation, cause string)
}

// LoanFetcher retrieves the member's loan record from the identity backend.
type LoanFetcher interface {
	FetchLoanInfo(ctx context.Context, tenant, employeeNumber, token string) (json.RawMessage, error)
}

type Service struct {
	gate           AuthGate
	fetcher        LoanFetcher
	formatter      Formatter
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

// AuditPublisher records loan fetch events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithFormatter(f Formatter) Option {
	return func(s *Service) {
		s.formatter = f
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func NewService(gate AuthGate, fetcher LoanFetcher, opts ...Option) *Service {
	svc := &Service{
		gate:      gate,
		fetcher:   fetcher,
		formatter: PlainFormatter{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Lookup answers a loan question. Unauthenticated rooms are redirected into
// the auth flow with the lookup queued for resumption; the remote fetch never
// runs without a verified session.
func (s *Service) Lookup(ctx context.Context, roomID, text string) *service.Reply {
	session, gateReply := s.gate.RequireAuth(ctx, roomID, OperationName, gatePrompt)
	if gateReply != nil {
		return gateReply
	}
	if session.Credentials == nil {
		// Authenticated status without credentials means the record was
		// tampered with or partially migrated; force re-authentication.
		s.logger.WarnContext(ctx, "authenticated session missing credentials",
			"room_id", roomID,
		)
		return s.gate.Expire(ctx, roomID, OperationName)
	}

	data, err := s.fetcher.FetchLoanInfo(ctx, session.Cooperative, session.Credentials.EmployeeNumber, session.Token)
	if err != nil {
		if domainerrors.HasCode(err, domainerrors.CodeSessionExpired) {
			s.logger.InfoContext(ctx, "provider rejected session token",
				"room_id", roomID,
				"cooperative", session.Cooperative,
			)
			return s.gate.Expire(ctx, roomID, OperationName)
		}
		s.logger.ErrorContext(ctx, "loan fetch failed",
			"room_id", roomID,
			"cooperative", session.Cooperative,
			"error", err,
		)
		s.gate.Fail(ctx, roomID, OperationName, err.Error())
		return &service.Reply{Text: replyLoanError, Status: models.StatusNeedCooperative}
	}

	s.emitAudit(ctx, audit.Event{
		RoomID:      roomID,
		Action:      audit.EventLoanFetched,
		Cooperative: session.Cooperative,
	})

	formatted, err := s.formatter.Format(ctx, data)
	if err != nil {
		// Rendering is local; a bad payload does not invalidate the session.
		s.logger.ErrorContext(ctx, "loan formatting failed",
			"room_id", roomID,
			"error", err,
		)
		return &service.Reply{Text: replyLoanError, Status: session.Status}
	}
	return &service.Reply{Text: formatted, Status: session.Status}
}

// Execute lets the auth flow resume an interrupted lookup right after OTP
// verification. It re-enters Lookup so the gate and expiry handling apply
// uniformly.
func (s *Service) Execute(ctx context.Context, session *models.Session, text string) (string, error) {
	reply := s.Lookup(ctx, session.RoomID, text)
	return reply.Text, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
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
