package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteerhub/internal/domain"
)

func TestEventService_CreateEvent(t *testing.T) {
	users := map[string]*domain.User{
		"mgr-1":   {ID: "mgr-1", Role: domain.RoleManager},
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
		"vol-1":   {ID: "vol-1", Role: domain.RoleUser},
	}

	valid := func() *domain.Event {
		return &domain.Event{
			Title:           "Park Cleanup",
			MaxParticipants: 10,
			StartTime:       testNow.Add(48 * time.Hour),
			EndTime:         testNow.Add(51 * time.Hour),
		}
	}

	tests := []struct {
		name     string
		event    *domain.Event
		authorID string
		wantErr  error
	}{
		{
			name:     "manager creates pending event",
			event:    valid(),
			authorID: "mgr-1",
		},
		{
			name:     "admin can create",
			event:    valid(),
			authorID: "admin-1",
		},
		{
			name:     "plain user cannot create",
			event:    valid(),
			authorID: "vol-1",
			wantErr:  domain.ErrForbidden,
		},
		{
			name:     "unknown author",
			event:    valid(),
			authorID: "ghost",
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name: "blank title",
			event: &domain.Event{
				Title:           "   ",
				MaxParticipants: 10,
				StartTime:       testNow.Add(48 * time.Hour),
				EndTime:         testNow.Add(51 * time.Hour),
			},
			authorID: "mgr-1",
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name: "zero capacity",
			event: &domain.Event{
				Title:           "Park Cleanup",
				MaxParticipants: 0,
				StartTime:       testNow.Add(48 * time.Hour),
				EndTime:         testNow.Add(51 * time.Hour),
			},
			authorID: "mgr-1",
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name: "end before start",
			event: &domain.Event{
				Title:           "Park Cleanup",
				MaxParticipants: 10,
				StartTime:       testNow.Add(51 * time.Hour),
				EndTime:         testNow.Add(48 * time.Hour),
			},
			authorID: "mgr-1",
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &eventService{
				eventRepo:   &mockEventRepository{events: map[string]*domain.Event{}},
				managerRepo: &mockManagerRepository{},
				userRepo:    &mockUserRepository{users: users},
				now:         func() time.Time { return testNow },
			}

			err := svc.CreateEvent(context.Background(), tt.event, tt.authorID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.event.Status != domain.EventStatusPending {
				t.Fatalf("expected pending status, got %q", tt.event.Status)
			}
			if tt.event.CurrentParticipants != 0 {
				t.Fatalf("expected zero participants, got %d", tt.event.CurrentParticipants)
			}
			if tt.event.AuthorID != tt.authorID {
				t.Fatalf("expected author %q, got %q", tt.authorID, tt.event.AuthorID)
			}
		})
	}
}

func TestEventService_GetEvent_DerivesStatus(t *testing.T) {
	tests := []struct {
		name       string
		event      *domain.Event
		wantStatus string
	}{
		{
			name:       "before start stays upcoming",
			event:      upcomingEvent("e1", 0, 5),
			wantStatus: domain.EventStatusUpcoming,
		},
		{
			name: "between start and end is ongoing",
			event: &domain.Event{
				ID:        "e1",
				Status:    domain.EventStatusUpcoming,
				StartTime: testNow.Add(-time.Hour),
				EndTime:   testNow.Add(time.Hour),
			},
			wantStatus: domain.EventStatusOngoing,
		},
		{
			name: "after end is completed",
			event: &domain.Event{
				ID:        "e1",
				Status:    domain.EventStatusUpcoming,
				StartTime: testNow.Add(-3 * time.Hour),
				EndTime:   testNow.Add(-time.Hour),
			},
			wantStatus: domain.EventStatusCompleted,
		},
		{
			name: "cancelled passes through regardless of clock",
			event: &domain.Event{
				ID:        "e1",
				Status:    domain.EventStatusCancelled,
				StartTime: testNow.Add(-3 * time.Hour),
				EndTime:   testNow.Add(-time.Hour),
			},
			wantStatus: domain.EventStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &eventService{
				eventRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": tt.event}},
				managerRepo: &mockManagerRepository{},
				userRepo:    &mockUserRepository{},
				now:         func() time.Time { return testNow },
			}

			got, err := svc.GetEvent(context.Background(), "e1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q", tt.wantStatus, got.Status)
			}
		})
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	users := map[string]*domain.User{
		"admin-1":  {ID: "admin-1", Role: domain.RoleAdmin},
		"other-1":  {ID: "other-1", Role: domain.RoleUser},
		"author-1": {ID: "author-1", Role: domain.RoleManager},
	}

	tests := []struct {
		name     string
		callerID string
		maxPart  int
		wantErr  error
	}{
		{
			name:     "author updates",
			callerID: "author-1",
			maxPart:  10,
		},
		{
			name:     "admin updates",
			callerID: "admin-1",
			maxPart:  10,
		},
		{
			name:     "other user forbidden",
			callerID: "other-1",
			maxPart:  10,
			wantErr:  domain.ErrForbidden,
		},
		{
			name:     "cannot shrink below current participants",
			callerID: "author-1",
			maxPart:  2,
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := upcomingEvent("e1", 3, 5)
			svc := &eventService{
				eventRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": existing}},
				managerRepo: &mockManagerRepository{},
				userRepo:    &mockUserRepository{users: users},
				now:         func() time.Time { return testNow },
			}

			update := upcomingEvent("e1", 3, tt.maxPart)
			update.MaxParticipants = tt.maxPart
			_, err := svc.UpdateEvent(context.Background(), update, tt.callerID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEventService_CancelEvent_Idempotent(t *testing.T) {
	event := upcomingEvent("e1", 0, 5)
	svc := &eventService{
		eventRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
		managerRepo: &mockManagerRepository{},
		userRepo:    &mockUserRepository{},
		now:         func() time.Time { return testNow },
	}

	if err := svc.CancelEvent(context.Background(), "e1", "author-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != domain.EventStatusCancelled {
		t.Fatalf("expected cancelled, got %q", event.Status)
	}
	// Second cancel is a no-op, not an error.
	if err := svc.CancelEvent(context.Background(), "e1", "author-1"); err != nil {
		t.Fatalf("unexpected error on repeat cancel: %v", err)
	}
}

func TestEventService_Moderation(t *testing.T) {
	users := map[string]*domain.User{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
		"mgr-1":   {ID: "mgr-1", Role: domain.RoleManager},
	}

	tests := []struct {
		name        string
		callerID    string
		eventStatus string
		approve     bool
		wantErr     error
		wantStatus  string
	}{
		{
			name:        "admin approves pending event",
			callerID:    "admin-1",
			eventStatus: domain.EventStatusPending,
			approve:     true,
			wantStatus:  domain.EventStatusUpcoming,
		},
		{
			name:        "admin rejects pending event",
			callerID:    "admin-1",
			eventStatus: domain.EventStatusPending,
			approve:     false,
			wantStatus:  domain.EventStatusRejected,
		},
		{
			name:        "manager cannot moderate",
			callerID:    "mgr-1",
			eventStatus: domain.EventStatusPending,
			approve:     true,
			wantErr:     domain.ErrForbidden,
		},
		{
			name:        "cannot approve a non-pending event",
			callerID:    "admin-1",
			eventStatus: domain.EventStatusUpcoming,
			approve:     true,
			wantErr:     domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := upcomingEvent("e1", 0, 5)
			event.Status = tt.eventStatus
			notifications := &mockNotificationService{}
			svc := &eventService{
				eventRepo:     &mockEventRepository{events: map[string]*domain.Event{"e1": event}},
				managerRepo:   &mockManagerRepository{},
				userRepo:      &mockUserRepository{users: users},
				notifications: notifications,
				now:           func() time.Time { return testNow },
			}

			var err error
			if tt.approve {
				err = svc.ApproveEvent(context.Background(), "e1", tt.callerID)
			} else {
				err = svc.RejectEvent(context.Background(), "e1", tt.callerID)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q", tt.wantStatus, event.Status)
			}
			if len(notifications.notified) != 1 || notifications.notified[0] != "author-1" {
				t.Fatalf("expected author notified, got %v", notifications.notified)
			}
		})
	}
}

func TestEventService_AddManager(t *testing.T) {
	users := map[string]*domain.User{
		"author-1": {ID: "author-1", Role: domain.RoleManager},
		"helper-1": {ID: "helper-1", Role: domain.RoleUser},
	}

	tests := []struct {
		name        string
		callerID    string
		userIDToAdd string
		managerRepo *mockManagerRepository
		wantErr     error
	}{
		{
			name:        "author adds helper",
			callerID:    "author-1",
			userIDToAdd: "helper-1",
			managerRepo: &mockManagerRepository{},
		},
		{
			name:        "non-author forbidden",
			callerID:    "helper-1",
			userIDToAdd: "helper-1",
			managerRepo: &mockManagerRepository{},
			wantErr:     domain.ErrForbidden,
		},
		{
			name:        "author cannot add self",
			callerID:    "author-1",
			userIDToAdd: "author-1",
			managerRepo: &mockManagerRepository{},
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name:        "unknown user",
			callerID:    "author-1",
			userIDToAdd: "ghost",
			managerRepo: &mockManagerRepository{},
			wantErr:     domain.ErrUserNotFound,
		},
		{
			name:        "already a manager",
			callerID:    "author-1",
			userIDToAdd: "helper-1",
			managerRepo: &mockManagerRepository{err: domain.ErrAlreadyManager},
			wantErr:     domain.ErrAlreadyManager,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &eventService{
				eventRepo:   &mockEventRepository{events: map[string]*domain.Event{"e1": upcomingEvent("e1", 0, 5)}},
				managerRepo: tt.managerRepo,
				userRepo:    &mockUserRepository{users: users},
				now:         func() time.Time { return testNow },
			}

			err := svc.AddManager(context.Background(), "e1", tt.userIDToAdd, tt.callerID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
