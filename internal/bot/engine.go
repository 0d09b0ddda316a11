// Package bot routes inbound conversation messages to the authentication
// flow, the reset action, or a protected operation, producing exactly one
// reply per message.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"fusebot/internal/auth/models"
	"fusebot/internal/auth/service"
	platformsync "fusebot/pkg/platform/sync"
)

// AuthFlow is the authentication state machine as seen by the dispatcher.
type AuthFlow interface {
	Advance(ctx context.Context, roomID, text string) *service.Reply
	VerifyOTP(ctx context.Context, roomID, code string) *service.Reply
	Reset(ctx context.Context, roomID string) *service.Reply
	Session(ctx context.Context, roomID string) *models.Session
}

// LoanLookup answers loan questions, gating unauthenticated rooms.
type LoanLookup interface {
	Lookup(ctx context.Context, roomID, text string) *service.Reply
}

var resetKeywords = []string{
	"reset", "restart", "start over", "clear", "begin again",
	"start fresh", "start new", "new session",
}

var loanKeywords = []string{
	"loan", "borrow", "credit", "debt", "payment", "balance",
	"due", "repayment", "interest", "principal",
}

type Engine struct {
	auth   AuthFlow
	loans  LoanLookup
	locks  *platformsync.KeyedMutex
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(auth AuthFlow, loans LoanLookup, opts ...Option) *Engine {
	e := &Engine{
		auth:  auth,
		loans: loans,
		locks: platformsync.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Handle processes one inbound message and returns the single reply.
// Messages for the same room are serialized; different rooms proceed in
// parallel.
func (e *Engine) Handle(ctx context.Context, roomID, text string) *service.Reply {
	e.locks.Lock(roomID)
	defer e.locks.Unlock(roomID)

	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	e.logger.DebugContext(ctx, "dispatching message",
		"room_id", roomID,
		"length", len(trimmed),
	)

	switch {
	case containsAny(lower, resetKeywords):
		return e.auth.Reset(ctx, roomID)
	case digitsOnly(trimmed):
		// VerifyOTP falls back to the auth flow when the room is not
		// waiting for a code.
		return e.auth.VerifyOTP(ctx, roomID, trimmed)
	case containsAny(lower, loanKeywords):
		return e.loans.Lookup(ctx, roomID, trimmed)
	default:
		return e.auth.Advance(ctx, roomID, trimmed)
	}
}

// Status reports the room's current session for status queries; the session
// is read under the room lock so it never interleaves with a mutation.
func (e *Engine) Status(ctx context.Context, roomID string) *models.Session {
	e.locks.Lock(roomID)
	defer e.locks.Unlock(roomID)
	return e.auth.Session(ctx, roomID)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
