package domain

import (
	"context"
	"time"
)

// Registration approval statuses.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// Post-event completion outcomes. Kept as a separate field from the approval
// status: approval and outcome are independent state machines.
const (
	CompletionCompleted = "completed"
	CompletionFailed    = "failed"
)

// Registration links a user to an event and carries approval and
// completion state. One registration per (event, user) pair.
// swagger:model Registration
type Registration struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	UserID           string     `json:"user_id"`
	Status           string     `json:"status"`
	CompletionStatus *string    `json:"completion_status"`
	CompletionNote   string     `json:"completion_note,omitempty"`
	JoinedAt         time.Time  `json:"joined_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewRegistration returns a pending Registration. ID is set by the repository on create.
func NewRegistration(eventID, userID string, now time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		Status:    RegistrationPending,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RegistrationWithEvent bundles a registration with its event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationWithUser bundles a registration with the registrant, for
// manager-facing listings.
type RegistrationWithUser struct {
	Registration *Registration `json:"registration"`
	User         *User         `json:"user"`
}

// HistoryEntry is one completed event in a user's volunteer history.
type HistoryEntry struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
	Hours        float64       `json:"hours"`
}

// RegistrationRepository defines storage operations for registrations.
//
// Approve and DeleteWithCounter run inside a transaction that locks the
// event row, so the current_participants counter always matches the count
// of approved registrations at rest.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	// Approve flips a pending registration to approved and increments the
	// event counter after re-checking capacity under a row lock.
	Approve(ctx context.Context, eventID, userID string) (*Registration, error)
	Reject(ctx context.Context, eventID, userID string) (*Registration, error)
	// DeleteWithCounter removes the registration and, if it was approved,
	// decrements the event counter in the same transaction.
	DeleteWithCounter(ctx context.Context, eventID, userID string) error
	SetCompletion(ctx context.Context, eventID, userID, status, note string, completedAt time.Time) (*Registration, error)
	ListByUserWithEvent(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListByEventWithUser(ctx context.Context, eventID string) ([]*RegistrationWithUser, error)
	// History returns approved+completed registrations for events that ended before now.
	History(ctx context.Context, userID string, now time.Time) ([]*RegistrationWithEvent, error)
}

// RegistrationService is the registration lifecycle component: it governs
// creating, approving, rejecting, completing, and cancelling a user's
// participation in an event, and keeps the event's participant counter
// consistent.
type RegistrationService interface {
	RequestJoin(ctx context.Context, eventID, userID string) (*Registration, error)
	Leave(ctx context.Context, eventID, userID string) error
	Approve(ctx context.Context, eventID, userID, managerID string) (*Registration, error)
	Reject(ctx context.Context, eventID, userID, managerID string) (*Registration, error)
	MarkCompletion(ctx context.Context, eventID, userID, managerID, status, note string) (*Registration, error)
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListEventRegistrations(ctx context.Context, eventID, managerID string) ([]*RegistrationWithUser, error)
	EventHistory(ctx context.Context, userID string) ([]*HistoryEntry, error)
	TotalHours(ctx context.Context, userID string) (float64, error)
}
