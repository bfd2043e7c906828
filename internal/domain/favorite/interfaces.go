package favorite

import (
	"context"
)

// ListCache caches a user's live favorites between mutations.
//
// Every Invalidate bumps the user's generation. A reader takes the
// generation before loading from the database and passes it to Set, which
// stores nothing if a mutation invalidated the user in between.
type ListCache interface {
	Get(ctx context.Context, userID int64) ([]FavoriteLocation, bool, error)
	Generation(ctx context.Context, userID int64) (int64, error)
	Set(ctx context.Context, userID, generation int64, favorites []FavoriteLocation) (bool, error)
	Invalidate(ctx context.Context, userID int64) error
}

// Notifier tells a user's other sessions that their favorites changed.
type Notifier interface {
	Publish(userID int64, event ChangeEvent)
}

// ChangeEvent is pushed after every committed mutation.
type ChangeEvent struct {
	Type       string `json:"type"`
	Action     string `json:"action"`
	FavoriteID int64  `json:"favorite_id,omitempty"`
}

const (
	EventFavoritesChanged = "favorites_changed"

	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionReordered = "reordered"
)
