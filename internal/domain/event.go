package domain

import (
	"context"
	"time"
)

// Stored event statuses. Ongoing and completed are never stored: they are
// derived from the wall clock at read time via VisibleStatus.
const (
	EventStatusPending   = "pending"
	EventStatusUpcoming  = "upcoming"
	EventStatusOngoing   = "ongoing"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
	EventStatusRejected  = "rejected"
)

// Event represents a volunteer event.
// swagger:model Event
type Event struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Content             string    `json:"content"`
	Address             string    `json:"address"`
	Category            string    `json:"category"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	Likes               int       `json:"likes"`
	Status              string    `json:"status"`
	AuthorID            string    `json:"author_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// VisibleStatus returns the status as seen by clients at the given time.
// A stored "upcoming" event becomes "ongoing" once it starts and "completed"
// once it ends; all other stored statuses pass through unchanged.
func (e *Event) VisibleStatus(now time.Time) string {
	if e.Status != EventStatusUpcoming {
		return e.Status
	}
	if !now.Before(e.EndTime) {
		return EventStatusCompleted
	}
	if !now.Before(e.StartTime) {
		return EventStatusOngoing
	}
	return EventStatusUpcoming
}

// DurationHours returns the event duration in hours rounded to 1 decimal.
func (e *Event) DurationHours() float64 {
	h := e.EndTime.Sub(e.StartTime).Hours()
	return float64(int(h*10+0.5)) / 10
}

// EventFilter holds optional filters for event listing.
type EventFilter struct {
	Category string
	Status   string
	Search   string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByAuthorID(ctx context.Context, authorID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// EventManager represents a user who co-manages an event (excluding the author).
// swagger:model EventManager
type EventManager struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EventManagerRepository defines the interface for co-manager storage.
type EventManagerRepository interface {
	Add(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventManager, error)
	Remove(ctx context.Context, eventID, userID string) error
}

// EventService defines event CRUD, moderation, and co-manager management.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, authorID string) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListMyEvents(ctx context.Context, authorID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, event *Event, callerID string) (*Event, error)
	CancelEvent(ctx context.Context, eventID, callerID string) error
	DeleteEvent(ctx context.Context, eventID, callerID string) error

	// Admin moderation of newly created events.
	ListPendingEvents(ctx context.Context, callerID string, params PaginationParams) ([]*Event, int, error)
	ApproveEvent(ctx context.Context, eventID, callerID string) error
	RejectEvent(ctx context.Context, eventID, callerID string) error

	AddManager(ctx context.Context, eventID, userIDToAdd, callerID string) error
	ListManagers(ctx context.Context, eventID, callerID string) ([]*EventManager, error)
	RemoveManager(ctx context.Context, eventID, userIDToRemove, callerID string) error
}
