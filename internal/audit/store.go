package audit

import (
	"context"

	dErrors "fusebot/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRoom(ctx context.Context, roomID string) ([]Event, error)
}
