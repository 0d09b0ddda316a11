package service

import (
	"context"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
)

// RequireAuth gates a protected operation. When the room is authenticated it
// returns the session and a nil reply. Otherwise it restarts the flow with
// the operation recorded for post-auth resumption and returns the prompt the
// member should see; the protected fetch itself never runs unauthenticated.
func (s *Service) RequireAuth(ctx context.Context, roomID, operation, prompt string) (*models.Session, *Reply) {
	session := s.loadSession(ctx, roomID)
	if session.Authenticated() {
		return session, nil
	}

	s.logger.InfoContext(ctx, "protected operation requires authentication",
		"room_id", roomID,
		"status", session.Status,
		"operation", operation,
	)

	fresh := models.NewSession(roomID)
	fresh.PostAuthAction = operation
	if err := s.persist(ctx, fresh); err != nil {
		return nil, storageFailure(fresh.Status)
	}
	s.metrics.IncrementTransition(string(fresh.Status))

	return nil, &Reply{Text: prompt, Status: fresh.Status}
}

// Expire invalidates the session after the provider rejected its token. The
// interrupted operation is preserved so it resumes once the member
// re-authenticates.
func (s *Service) Expire(ctx context.Context, roomID, operation string) *Reply {
	s.metrics.IncrementSessionExpired()
	s.emitAudit(ctx, audit.Event{
		RoomID: roomID,
		Action: audit.EventSessionExpired,
	})

	fresh := models.NewSession(roomID)
	fresh.PostAuthAction = operation
	if err := s.persist(ctx, fresh); err != nil {
		return storageFailure(fresh.Status)
	}

	return &Reply{Text: replySessionExpired, Status: fresh.Status}
}

// Fail invalidates the session after an unrecoverable operation error,
// recording the cause and keeping the operation queued for after the next
// authentication.
func (s *Service) Fail(ctx context.Context, roomID, operation, cause string) {
	fresh := models.NewSession(roomID)
	fresh.PostAuthAction = operation
	fresh.LastError = cause
	s.persist(ctx, fresh)
}
