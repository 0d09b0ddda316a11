// Package store persists authentication sessions keyed by room.
package store

import (
	"context"

	"fusebot/internal/auth/models"
)

// Store is the session persistence contract.
//
// Error contract:
//   - Get never strands the caller: it always returns a usable session. When
//     the backend fails, Get returns a fresh default session for the room
//     together with the backend error so the caller can log the degradation
//     and continue the conversation from the top of the flow.
//   - Put returns a CodeStorage domain error on backend failure.
//   - Delete is idempotent; deleting an absent session is not an error.
//
// Implementations must not alias returned sessions with their internal
// state: mutating a session obtained from Get must not change what a later
// Get observes until Put is called.
type Store interface {
	Get(ctx context.Context, roomID string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, roomID string) error
}
