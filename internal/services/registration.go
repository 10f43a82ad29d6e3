package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	managerRepo      domain.EventManagerRepository
	userRepo         domain.UserRepository
	notifications    domain.NotificationService
	now              func() time.Time
}

// NewRegistrationService creates the registration lifecycle service.
// The now function defaults to time.Now and exists for tests.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	managerRepo domain.EventManagerRepository,
	userRepo domain.UserRepository,
	notifications domain.NotificationService,
	now func() time.Time,
) domain.RegistrationService {
	if now == nil {
		now = time.Now
	}
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		managerRepo:      managerRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		now:              now,
	}
}

// canManage reports whether callerID is the event author or a co-manager.
func (s *registrationService) canManage(ctx context.Context, event *domain.Event, callerID string) (bool, error) {
	if event.AuthorID == callerID {
		return true, nil
	}
	ok, err := s.managerRepo.Exists(ctx, event.ID, callerID)
	if err != nil {
		return false, fmt.Errorf("check event manager: %w", err)
	}
	return ok, nil
}

func (s *registrationService) RequestJoin(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := s.now()
	switch event.VisibleStatus(now) {
	case domain.EventStatusUpcoming:
	case domain.EventStatusOngoing, domain.EventStatusCompleted:
		return nil, domain.ErrEventStarted
	default:
		return nil, domain.ErrEventNotAccepting
	}
	if event.CurrentParticipants >= event.MaxParticipants {
		return nil, domain.ErrEventFull
	}

	// Duplicate registrations are caught by the unique (event_id, user_id)
	// constraint, not by a pre-read. The constraint is the single source of
	// truth for "already registered".
	reg := domain.NewRegistration(eventID, userID, now)
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) Leave(ctx context.Context, eventID, userID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.StartTime.After(s.now()) {
		return domain.ErrEventStarted
	}

	// Approved registrations decrement the counter inside the same
	// transaction that deletes the row.
	if err := s.registrationRepo.DeleteWithCounter(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) Approve(ctx context.Context, eventID, userID, managerID string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.canManage(ctx, event, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	// The repository re-checks capacity under a row lock and only approves a
	// pending registration, so re-approval can never double-increment the
	// counter.
	reg, err := s.registrationRepo.Approve(ctx, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrEventFull),
			errors.Is(err, domain.ErrInvalidInput):
			return nil, err
		}
		return nil, fmt.Errorf("approve registration: %w", err)
	}

	s.notifyUser(ctx, userID, event, "registration_approved",
		"Registration approved",
		fmt.Sprintf("Your registration for %q was approved.", event.Title),
		"approved", "")
	return reg, nil
}

func (s *registrationService) Reject(ctx context.Context, eventID, userID, managerID string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.canManage(ctx, event, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	reg, err := s.registrationRepo.Reject(ctx, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
			return nil, err
		}
		return nil, fmt.Errorf("reject registration: %w", err)
	}

	s.notifyUser(ctx, userID, event, "registration_rejected",
		"Registration rejected",
		fmt.Sprintf("Your registration for %q was rejected.", event.Title),
		"rejected", "")
	return reg, nil
}

func (s *registrationService) MarkCompletion(ctx context.Context, eventID, userID, managerID, status, note string) (*domain.Registration, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("completion note is required: %w", domain.ErrInvalidInput)
	}
	if status != domain.CompletionCompleted && status != domain.CompletionFailed {
		return nil, fmt.Errorf("completion status must be %q or %q: %w",
			domain.CompletionCompleted, domain.CompletionFailed, domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.canManage(ctx, event, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	if event.EndTime.After(now) {
		return nil, domain.ErrEventNotEnded
	}

	reg, err := s.registrationRepo.SetCompletion(ctx, eventID, userID, status, note, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set completion: %w", err)
	}

	s.notifyUser(ctx, userID, event, "completion_recorded",
		"Participation recorded",
		fmt.Sprintf("Your participation in %q was marked %s.", event.Title, status),
		status, note)
	return reg, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	regs, err := s.registrationRepo.ListByUserWithEvent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	return regs, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID, managerID string) ([]*domain.RegistrationWithUser, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.canManage(ctx, event, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	regs, err := s.registrationRepo.ListByEventWithUser(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithUser{}
	}
	return regs, nil
}

func (s *registrationService) EventHistory(ctx context.Context, userID string) ([]*domain.HistoryEntry, error) {
	regs, err := s.registrationRepo.History(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]*domain.HistoryEntry, 0, len(regs))
	for _, rwe := range regs {
		entries = append(entries, &domain.HistoryEntry{
			Registration: rwe.Registration,
			Event:        rwe.Event,
			Hours:        rwe.Event.DurationHours(),
		})
	}
	return entries, nil
}

func (s *registrationService) TotalHours(ctx context.Context, userID string) (float64, error) {
	entries, err := s.EventHistory(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total, nil
}

// notifyUser looks up the registrant and fires the notification side effects.
// Lookup failures are swallowed: notifications never fail the lifecycle
// operation that triggered them.
func (s *registrationService) notifyUser(ctx context.Context, userID string, event *domain.Event, templateName, title, body, outcome, note string) {
	if s.notifications == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	s.notifications.NotifyRegistration(ctx, user, event, templateName, title, body, &domain.RegistrationEmailData{
		Email:      user.Email,
		Username:   user.Username,
		EventTitle: event.Title,
		Outcome:    outcome,
		Note:       note,
	})
}
