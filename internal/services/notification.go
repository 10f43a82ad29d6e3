package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"volunteerhub/internal/domain"
)

type notificationService struct {
	repo     domain.NotificationRepository
	pusher   domain.Pusher
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewNotificationService creates a NotificationService. Pusher and mailer
// may be nil; the corresponding side effect is then skipped.
func NewNotificationService(
	repo domain.NotificationRepository,
	pusher domain.Pusher,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		repo:     repo,
		pusher:   pusher,
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, title, body string) error {
	n := &domain.Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if s.pusher != nil {
		s.pusher.PushToUser(userID, n)
	}
	return nil
}

// NotifyRegistration persists the notification, pushes it to connected
// clients, and sends the templated email. Everything is fire-and-forget:
// failures are logged, never returned to the lifecycle operation.
func (s *notificationService) NotifyRegistration(ctx context.Context, user *domain.User, event *domain.Event, templateName, title, body string, data *domain.RegistrationEmailData) {
	if err := s.Notify(ctx, user.ID, title, body); err != nil {
		s.logger.Warn("notification store failed", "user_id", user.ID, "err", err)
	}
	if s.mailer == nil || s.renderer == nil || data == nil {
		return
	}
	go func() {
		subject, html, text, err := s.renderer.Render(templateName, data)
		if err != nil {
			s.logger.Warn("notification email render failed", "template", templateName, "err", err)
			return
		}
		if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
			s.logger.Warn("notification email send failed", "to", data.Email, "err", err)
		}
	}()
}

func (s *notificationService) List(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
