package service

import (
	"context"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
)

// Reset discards the room's session on the member's request. Any pending
// post-auth action is dropped with it: an explicit reset abandons intent.
func (s *Service) Reset(ctx context.Context, roomID string) *Reply {
	if err := s.store.Delete(ctx, roomID); err != nil {
		s.logger.ErrorContext(ctx, "session delete failed",
			"room_id", roomID,
			"error", err,
		)
	}

	s.metrics.IncrementSessionReset()
	s.emitAudit(ctx, audit.Event{
		RoomID: roomID,
		Action: audit.EventSessionReset,
	})

	return &Reply{Text: replyReset, Status: models.StatusNeedCooperative}
}
