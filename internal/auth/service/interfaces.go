package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
	"fusebot/internal/provider"
)

// SessionStore persists per-room authentication sessions.
// Error Contract: Get always returns a usable session; a non-nil error marks
// the session as degraded (fresh default substituted after a backend failure).
type SessionStore interface {
	Get(ctx context.Context, roomID string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, roomID string) error
}

// IdentityProvider performs the credential exchange with the remote identity
// backend. Authenticate returns the OTP and bearer token issued for the
// member, or a coded domain error (upstream, protocol, timeout).
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, employeeNumber, tenant string) (*provider.Grant, error)
	FetchLoanInfo(ctx context.Context, tenant, employeeNumber, token string) (json.RawMessage, error)
}

// CooperativeResolver maps free-text cooperative names to canonical slugs.
type CooperativeResolver interface {
	Resolve(raw string) (string, bool)
}

// AuditPublisher records authentication protocol events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Operation is a protected action that can be resumed automatically after
// authentication completes. Execute returns the user-facing reply text.
type Operation interface {
	Execute(ctx context.Context, session *models.Session, text string) (string, error)
}
