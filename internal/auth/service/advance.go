package service

import (
	"context"
	"strings"

	"fusebot/internal/audit"
	"fusebot/internal/auth/models"
	"fusebot/internal/credentials"
)

// Advance applies one inbound message to the room's authentication flow and
// returns the single reply. The current status decides how the text is
// interpreted: cooperative name, credential pair, or a prompt reminder.
func (s *Service) Advance(ctx context.Context, roomID, text string) *Reply {
	start := s.now()
	defer func() { s.metrics.ObserveAdvance(start) }()

	session := s.loadSession(ctx, roomID)
	input := strings.TrimSpace(text)

	s.logger.InfoContext(ctx, "advancing auth flow",
		"room_id", roomID,
		"status", session.Status,
	)

	switch session.Status {
	case models.StatusNeedCooperative:
		return s.collectCooperative(ctx, session, input)
	case models.StatusNeedCredentials:
		return s.collectCredentials(ctx, session, input)
	case models.StatusNeedOTP:
		return &Reply{Text: replyOTPPrompt, Status: session.Status}
	case models.StatusAuthenticated:
		return &Reply{Text: replyAlreadyAuthenticated, Status: session.Status}
	}

	// Unknown status: the record is from a different version or corrupted.
	// Restart the flow rather than wedging the room.
	fresh := session.Reset(true)
	if err := s.persist(ctx, fresh); err != nil {
		return storageFailure(fresh.Status)
	}
	s.metrics.IncrementTransition(string(fresh.Status))
	return &Reply{Text: replyStartAuth, Status: fresh.Status}
}

func (s *Service) collectCooperative(ctx context.Context, session *models.Session, input string) *Reply {
	slug, ok := s.resolver.Resolve(input)
	if !ok {
		return &Reply{Text: replyCooperativeUnrecognized(input), Status: session.Status}
	}

	session.Status = models.StatusNeedCredentials
	session.Cooperative = slug
	session.OriginalCoopName = input
	if err := s.persist(ctx, session); err != nil {
		return storageFailure(models.StatusNeedCooperative)
	}

	s.metrics.IncrementTransition(string(session.Status))
	s.emitAudit(ctx, audit.Event{
		RoomID:      session.RoomID,
		Action:      audit.EventCooperativeResolved,
		Cooperative: slug,
	})

	return &Reply{Text: replyCooperativeRecognized(slug), Status: session.Status}
}

func (s *Service) collectCredentials(ctx context.Context, session *models.Session, input string) *Reply {
	parsed := credentials.Extract(input)
	if parsed.Email == "" || parsed.EmployeeNumber == "" {
		return &Reply{Text: replyNeedBothCredentials, Status: session.Status}
	}
	if !credentials.ValidEmail(parsed.Email) {
		return &Reply{Text: replyInvalidEmail(parsed.Email), Status: session.Status}
	}

	grant, err := s.provider.Authenticate(ctx, parsed.Email, parsed.EmployeeNumber, session.Cooperative)
	if err != nil {
		s.logger.ErrorContext(ctx, "provider authentication failed",
			"room_id", session.RoomID,
			"cooperative", session.Cooperative,
			"email", credentials.MaskEmail(parsed.Email),
			"error", err,
		)
		s.metrics.IncrementProviderAuth("failure")
		s.emitAudit(ctx, audit.Event{
			RoomID:      session.RoomID,
			Action:      audit.EventAuthFailed,
			Cooperative: session.Cooperative,
			MaskedEmail: credentials.MaskEmail(parsed.Email),
			Reason:      err.Error(),
		})
		// The room stays in NEED_CREDENTIALS; the member retries in place.
		return &Reply{Text: replyAuthFailed, Status: session.Status}
	}

	now := s.now()
	session.Status = models.StatusNeedOTP
	session.Credentials = &models.Credentials{Email: parsed.Email, EmployeeNumber: parsed.EmployeeNumber}
	session.OTP = grant.OTP
	session.Token = grant.Token
	session.OtpGeneratedAt = &now
	if err := s.persist(ctx, session); err != nil {
		// The provider issued an OTP the store never saw; the member must
		// retry credentials so verification matches a recorded code.
		return storageFailure(models.StatusNeedCredentials)
	}

	s.metrics.IncrementProviderAuth("success")
	s.metrics.IncrementTransition(string(session.Status))
	s.emitAudit(ctx, audit.Event{
		RoomID:      session.RoomID,
		Action:      audit.EventOTPIssued,
		Cooperative: session.Cooperative,
		MaskedEmail: credentials.MaskEmail(parsed.Email),
	})

	return &Reply{Text: replyOTPSent(parsed.Email), Status: session.Status}
}
