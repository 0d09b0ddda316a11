package service

import (
	"context"
	"strings"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
	"fusebot/internal/credentials"
)

// VerifyOTP checks the entered code against the session's issued OTP. On a
// match the session becomes AUTHENTICATED and, when a protected operation was
// interrupted to authenticate, that operation runs immediately and its result
// is folded into the reply. A mismatch keeps the session in NEED_OTP so the
// member can retry without restarting the flow.
func (s *Service) VerifyOTP(ctx context.Context, roomID, code string) *Reply {
	session := s.loadSession(ctx, roomID)
	if session.Status != models.StatusNeedOTP {
		return s.Advance(ctx, roomID, code)
	}

	entered := strings.TrimSpace(code)
	if entered != session.OTP {
		s.logger.InfoContext(ctx, "otp mismatch",
			"room_id", roomID,
		)
		s.metrics.IncrementOTPVerification("mismatch")
		return &Reply{Text: replyOTPMismatch, Status: session.Status}
	}

	// Capture the interrupted operation before clearing it: resumption must
	// reflect what the member originally asked for, not this verification.
	resume := session.PostAuthAction

	now := s.now()
	session.Status = models.StatusAuthenticated
	session.VerifiedAt = &now
	session.OTP = ""
	session.PostAuthAction = ""
	if err := s.persist(ctx, session); err != nil {
		return storageFailure(models.StatusNeedOTP)
	}

	s.metrics.IncrementOTPVerification("success")
	s.metrics.IncrementTransition(string(session.Status))

	maskedEmail := ""
	if session.Credentials != nil {
		maskedEmail = credentials.MaskEmail(session.Credentials.Email)
	}
	s.emitAudit(ctx, audit.Event{
		RoomID:      session.RoomID,
		Action:      audit.EventOTPVerified,
		Cooperative: session.Cooperative,
		MaskedEmail: maskedEmail,
	})

	op, ok := s.operations[resume]
	if !ok || resume == "" {
		return &Reply{Text: replyAuthSuccess, Status: session.Status}
	}

	s.logger.InfoContext(ctx, "resuming operation after authentication",
		"room_id", roomID,
		"operation", resume,
	)
	text, err := op.Execute(ctx, session, "")
	if err != nil {
		s.logger.ErrorContext(ctx, "post-auth operation failed",
			"room_id", roomID,
			"operation", resume,
			"error", err,
		)
		return &Reply{Text: replyAuthSuccess, Status: session.Status}
	}
	// The operation may have invalidated the session (expired token), so the
	// reported status comes from a fresh read.
	return &Reply{
		Text:   replyAuthSuccessResume + "\n\n" + text,
		Status: s.loadSession(ctx, roomID).Status,
	}
}
