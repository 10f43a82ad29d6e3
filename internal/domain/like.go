package domain

import "context"

// Like target kinds.
const (
	LikeTargetPost  = "post"
	LikeTargetEvent = "event"
)

// Like is a toggle record: one row per (user, target), reused by flipping
// Status between 0 and 1 rather than inserting and deleting.
type Like struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Status     int    `json:"status"`
}

// LikeRepository toggles like rows. Toggle must flip the row status and
// adjust the denormalized likes counter on the target in one transaction.
type LikeRepository interface {
	// Toggle returns the new status (1 liked, 0 unliked) and the target's
	// resulting like count.
	Toggle(ctx context.Context, userID, targetType, targetID string) (status, likes int, err error)
}

// LikeService exposes like toggling for posts and events.
type LikeService interface {
	TogglePostLike(ctx context.Context, postID, userID string) (liked bool, likes int, err error)
	ToggleEventLike(ctx context.Context, eventID, userID string) (liked bool, likes int, err error)
}
