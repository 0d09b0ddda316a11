package audit

import "time"

// Event is emitted from domain logic to capture key authentication actions.
// Keep it transport-agnostic so stores and sinks can fan out. Events never
// carry credentials, OTPs, or tokens; email appears only in masked form.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	RoomID      string    `json:"room_id"`
	Action      string    `json:"action"`
	Cooperative string    `json:"cooperative,omitempty"`
	MaskedEmail string    `json:"masked_email,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

const (
	EventCooperativeResolved = "cooperative_resolved"
	EventOTPIssued           = "otp_issued"
	EventOTPVerified         = "otp_verified"
	EventAuthFailed          = "auth_failed"
	EventSessionReset        = "session_reset"
	EventSessionExpired      = "session_expired"
	EventLoanFetched         = "loan_fetched"
)
