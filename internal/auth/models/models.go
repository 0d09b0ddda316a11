// Package models defines the per-conversation authentication session record.
package models

import (
	"log/slog"
	"time"

	"fusebot/internal/credentials"
)

// Status is the conversation's position in the authentication protocol.
// Transitions are monotonic forward except for explicit reset and failure
// fallbacks, both of which return to StatusNeedCooperative.
type Status string

const (
	StatusNeedCooperative Status = "NEED_COOPERATIVE"
	StatusNeedCredentials Status = "NEED_CREDENTIALS"
	StatusNeedOTP         Status = "NEED_OTP"
	StatusAuthenticated   Status = "AUTHENTICATED"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNeedCooperative, StatusNeedCredentials, StatusNeedOTP, StatusAuthenticated:
		return true
	}
	return false
}

// Credentials is the collected email / employee-number pair. It is forwarded
// to the identity provider, never hashed or stored outside the session record.
type Credentials struct {
	Email          string `json:"email"`
	EmployeeNumber string `json:"employee_number"`
}

// LogValue masks the email so credentials can be logged safely.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", credentials.MaskEmail(c.Email)),
		slog.String("employee_number", c.EmployeeNumber),
	)
}

// Session is the authentication record for one conversation room. Exactly one
// record exists per room; writes are last-write-wins under the per-room
// serialization discipline enforced by the dispatcher.
//
// Status determines which fields are meaningful: Cooperative from
// NEED_CREDENTIALS onward, Credentials/OTP/Token from NEED_OTP onward, and
// Token remains valid while AUTHENTICATED.
type Session struct {
	Status           Status       `json:"status"`
	RoomID           string       `json:"room_id"`
	Cooperative      string       `json:"cooperative,omitempty"`
	OriginalCoopName string       `json:"original_coop_name,omitempty"`
	Credentials      *Credentials `json:"credentials,omitempty"`
	OTP              string       `json:"otp,omitempty"`
	Token            string       `json:"token,omitempty"`
	OtpGeneratedAt   *time.Time   `json:"otp_generated_at,omitempty"`
	VerifiedAt       *time.Time   `json:"verified_at,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
	PostAuthAction   string       `json:"post_auth_action,omitempty"`
	LastError        string       `json:"last_error,omitempty"`
}

// NewSession returns the default record for a room that has never
// authenticated.
func NewSession(roomID string) *Session {
	return &Session{
		Status: StatusNeedCooperative,
		RoomID: roomID,
	}
}

// Reset returns a fresh default session for the same room, optionally keeping
// a pending post-auth action so the original intent survives re-authentication.
func (s *Session) Reset(keepPostAuthAction bool) *Session {
	fresh := NewSession(s.RoomID)
	if keepPostAuthAction {
		fresh.PostAuthAction = s.PostAuthAction
	}
	return fresh
}

// Authenticated reports whether the session can be used for protected fetches.
func (s *Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Clone returns a deep copy so stores can hand out records without aliasing
// their internal state.
func (s *Session) Clone() *Session {
	out := *s
	if s.Credentials != nil {
		creds := *s.Credentials
		out.Credentials = &creds
	}
	if s.OtpGeneratedAt != nil {
		t := *s.OtpGeneratedAt
		out.OtpGeneratedAt = &t
	}
	if s.VerifiedAt != nil {
		t := *s.VerifiedAt
		out.VerifiedAt = &t
	}
	return &out
}

// LogValue renders the session for structured logs with the OTP and token
// redacted and the email masked.
func (s *Session) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("room_id", s.RoomID),
		slog.String("status", string(s.Status)),
	}
	if s.Cooperative != "" {
		attrs = append(attrs, slog.String("cooperative", s.Cooperative))
	}
	if s.Credentials != nil {
		attrs = append(attrs, slog.Any("credentials", *s.Credentials))
	}
	if s.OTP != "" {
		attrs = append(attrs, slog.String("otp", "[REDACTED]"))
	}
	if s.Token != "" {
		attrs = append(attrs, slog.String("token", "[REDACTED]"))
	}
	if s.PostAuthAction != "" {
		attrs = append(attrs, slog.String("post_auth_action", s.PostAuthAction))
	}
	return slog.GroupValue(attrs...)
}
