package domain

import (
	"context"
	"time"
)

// Notification is a persisted per-user notification.
// swagger:model Notification
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository defines the interface for notification storage.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUserID(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// Pusher delivers a payload to a connected user in real time. Delivery is
// best-effort: offline users only see the persisted row.
type Pusher interface {
	PushToUser(userID string, payload any)
}

// Mailer sends an email with html and/or text bodies.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template into subject, html,
// and text parts.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData is the template data for registration lifecycle emails.
type RegistrationEmailData struct {
	Email      string
	Username   string
	EventTitle string
	Outcome    string
	Note       string
}

// NotificationService persists notifications and triggers the fire-and-forget
// side effects (realtime push, email).
type NotificationService interface {
	Notify(ctx context.Context, userID, title, body string) error
	NotifyRegistration(ctx context.Context, user *User, event *Event, templateName, title, body string, data *RegistrationEmailData)
	List(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
