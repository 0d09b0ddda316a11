package handler

import (
	"strings"
	"time"

	domainerrors "fusebot/pkg/domain-errors"
)

const maxMessageLength = 4096

// MessageRequest is one inbound conversation message.
type MessageRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

func (r *MessageRequest) Normalize() {
	r.RoomID = strings.TrimSpace(r.RoomID)
	r.Text = strings.TrimSpace(r.Text)
}

func (r *MessageRequest) Validate() error {
	if r.RoomID == "" {
		return domainerrors.New(domainerrors.CodeValidation, "room_id is required")
	}
	if r.Text == "" {
		return domainerrors.New(domainerrors.CodeValidation, "text is required")
	}
	if len(r.Text) > maxMessageLength {
		return domainerrors.New(domainerrors.CodeValidation, "text exceeds maximum length")
	}
	return nil
}

// MessageResponse carries the bot's single reply to a message.
type MessageResponse struct {
	RoomID    string `json:"room_id"`
	Reply     string `json:"reply"`
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// AuthStatusResponse is the masked session view: no OTP, no token, email only
// in masked form.
type AuthStatusResponse struct {
	RoomID           string     `json:"room_id"`
	Status           string     `json:"status"`
	Cooperative      string     `json:"cooperative,omitempty"`
	MaskedEmail      string     `json:"masked_email,omitempty"`
	PendingOperation string     `json:"pending_operation,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// CooperativesResponse lists the registered cooperative aliases.
type CooperativesResponse struct {
	Cooperatives []string `json:"cooperatives"`
}
