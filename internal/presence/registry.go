package presence

import (
	"context"
	"time"

	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
)

var ErrPresenceUnavailable = commonerrors.ErrPresenceUnavailable

// Entry records the live connection currently representing a user.
type Entry struct {
	UserID   string    `json:"userId"`
	Handle   string    `json:"-"`
	LastSeen time.Time `json:"lastSeen"`
}

// Registry holds at most one entry per user; Put overwrites, so the last connection wins.
type Registry interface {
	Put(ctx context.Context, userID, handle string) error
	Get(ctx context.Context, userID string) (Entry, bool, error)
	// RemoveIfHandle deletes the entry only while it still belongs to handle.
	RemoveIfHandle(ctx context.Context, userID, handle string) (bool, error)
	Touch(ctx context.Context, userID, handle string) error
	Count(ctx context.Context) (int, error)
}
