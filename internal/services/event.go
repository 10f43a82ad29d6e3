package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

type eventService struct {
	eventRepo     domain.EventRepository
	managerRepo   domain.EventManagerRepository
	userRepo      domain.UserRepository
	notifications domain.NotificationService
	now           func() time.Time
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	managerRepo domain.EventManagerRepository,
	userRepo domain.UserRepository,
	notifications domain.NotificationService,
	now func() time.Time,
) domain.EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{
		eventRepo:     eventRepo,
		managerRepo:   managerRepo,
		userRepo:      userRepo,
		notifications: notifications,
		now:           now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, authorID string) error {
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get author: %w", err)
	}
	if author.Role != domain.RoleManager && author.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if event.MaxParticipants <= 0 {
		return fmt.Errorf("max_participants must be positive: %w", domain.ErrInvalidInput)
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("end_time must be after start_time: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	event.AuthorID = authorID
	event.Status = domain.EventStatusPending
	event.CurrentParticipants = 0
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event.Status = event.VisibleStatus(s.now())
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	now := s.now()
	for _, e := range events {
		e.Status = e.VisibleStatus(now)
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, authorID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByAuthorID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list events by author: %w", err)
	}
	now := s.now()
	for _, e := range events {
		e.Status = e.VisibleStatus(now)
	}
	return events, nil
}

// getOwned fetches the event and verifies callerID is its author or an admin.
func (s *eventService) getOwned(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.AuthorID == callerID {
		return event, nil
	}
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, domain.ErrForbidden
	}
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, event *domain.Event, callerID string) (*domain.Event, error) {
	existing, err := s.getOwned(ctx, event.ID, callerID)
	if err != nil {
		return nil, err
	}
	if event.MaxParticipants < existing.CurrentParticipants {
		return nil, fmt.Errorf("max_participants below current participants: %w", domain.ErrInvalidInput)
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, fmt.Errorf("end_time must be after start_time: %w", domain.ErrInvalidInput)
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetEvent(ctx, event.ID)
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, callerID string) error {
	event, err := s.getOwned(ctx, eventID, callerID)
	if err != nil {
		return err
	}
	if event.Status == domain.EventStatusCancelled {
		return nil
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, domain.EventStatusCancelled); err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	if _, err := s.getOwned(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// requireAdmin returns ErrForbidden unless callerID has the admin role.
func (s *eventService) requireAdmin(ctx context.Context, callerID string) error {
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("get caller: %w", err)
	}
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *eventService) ListPendingEvents(ctx context.Context, callerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, 0, err
	}
	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{Status: domain.EventStatusPending}, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) moderate(ctx context.Context, eventID, callerID, newStatus, title, body string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventStatusPending {
		return fmt.Errorf("event is %s: %w", event.Status, domain.ErrInvalidInput)
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, newStatus); err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	if s.notifications != nil {
		_ = s.notifications.Notify(ctx, event.AuthorID, title, fmt.Sprintf(body, event.Title))
	}
	return nil
}

func (s *eventService) ApproveEvent(ctx context.Context, eventID, callerID string) error {
	return s.moderate(ctx, eventID, callerID, domain.EventStatusUpcoming,
		"Event approved", "Your event %q was approved and is now open for registrations.")
}

func (s *eventService) RejectEvent(ctx context.Context, eventID, callerID string) error {
	return s.moderate(ctx, eventID, callerID, domain.EventStatusRejected,
		"Event rejected", "Your event %q was rejected.")
}

func (s *eventService) AddManager(ctx context.Context, eventID, userIDToAdd, callerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.AuthorID != callerID {
		return domain.ErrForbidden
	}
	if userIDToAdd == event.AuthorID {
		return domain.ErrInvalidInput
	}
	if _, err := s.userRepo.GetByID(ctx, userIDToAdd); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.managerRepo.Add(ctx, eventID, userIDToAdd); err != nil {
		if errors.Is(err, domain.ErrAlreadyManager) {
			return domain.ErrAlreadyManager
		}
		return fmt.Errorf("add manager: %w", err)
	}
	return nil
}

func (s *eventService) ListManagers(ctx context.Context, eventID, callerID string) ([]*domain.EventManager, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.AuthorID != callerID {
		return nil, domain.ErrForbidden
	}
	managers, err := s.managerRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	if managers == nil {
		managers = []*domain.EventManager{}
	}
	return managers, nil
}

func (s *eventService) RemoveManager(ctx context.Context, eventID, userIDToRemove, callerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.AuthorID != callerID {
		return domain.ErrForbidden
	}
	if err := s.managerRepo.Remove(ctx, eventID, userIDToRemove); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove manager: %w", err)
	}
	return nil
}
