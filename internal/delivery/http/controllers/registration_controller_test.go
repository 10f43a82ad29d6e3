package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"volunteerhub/internal/delivery/http/helpers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventID = "11111111-1111-1111-1111-111111111111"
	testUserID  = "22222222-2222-2222-2222-222222222222"
)

// fakeRegistrationService implements domain.RegistrationService with
// field-controlled return values.
type fakeRegistrationService struct {
	reg      *domain.Registration
	err      error
	byEvent  []*domain.RegistrationWithUser
	history  []*domain.HistoryEntry
	lastNote string
}

func (f *fakeRegistrationService) RequestJoin(_ context.Context, _, _ string) (*domain.Registration, error) {
	return f.reg, f.err
}

func (f *fakeRegistrationService) Leave(_ context.Context, _, _ string) error {
	return f.err
}

func (f *fakeRegistrationService) Approve(_ context.Context, _, _, _ string) (*domain.Registration, error) {
	return f.reg, f.err
}

func (f *fakeRegistrationService) Reject(_ context.Context, _, _, _ string) (*domain.Registration, error) {
	return f.reg, f.err
}

func (f *fakeRegistrationService) MarkCompletion(_ context.Context, _, _, _, _, note string) (*domain.Registration, error) {
	f.lastNote = note
	return f.reg, f.err
}

func (f *fakeRegistrationService) ListMyRegistrations(_ context.Context, _ string) ([]*domain.RegistrationWithEvent, error) {
	return nil, f.err
}

func (f *fakeRegistrationService) ListEventRegistrations(_ context.Context, _, _ string) ([]*domain.RegistrationWithUser, error) {
	return f.byEvent, f.err
}

func (f *fakeRegistrationService) EventHistory(_ context.Context, _ string) ([]*domain.HistoryEntry, error) {
	return f.history, f.err
}

func (f *fakeRegistrationService) TotalHours(_ context.Context, _ string) (float64, error) {
	return 0, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func authedRequest(method, target string, body io.Reader, userID, role string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.SetClaims(req.Context(), &domain.TokenClaims{UserID: userID, Role: role})
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRegistrationController_Join(t *testing.T) {
	tests := []struct {
		name         string
		eventID      string
		svc          *fakeRegistrationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "pending registration created",
			eventID:    testEventID,
			svc:        &fakeRegistrationService{reg: &domain.Registration{EventID: testEventID, UserID: testUserID, Status: domain.RegistrationPending}},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid event id",
			eventID:      "not-a-uuid",
			svc:          &fakeRegistrationService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "event not found",
			eventID:      testEventID,
			svc:          &fakeRegistrationService{err: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "event full",
			eventID:      testEventID,
			svc:          &fakeRegistrationService{err: domain.ErrEventFull},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeEventFull,
		},
		{
			name:         "already registered",
			eventID:      testEventID,
			svc:          &fakeRegistrationService{err: domain.ErrAlreadyRegistered},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeAlreadyRegistered,
		},
		{
			name:         "event not accepting",
			eventID:      testEventID,
			svc:          &fakeRegistrationService{err: domain.ErrEventNotAccepting},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "unexpected error",
			eventID:      testEventID,
			svc:          &fakeRegistrationService{err: errors.New("db down")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := authedRequest(http.MethodPost, "/events/"+tt.eventID+"/registrations", nil, testUserID, domain.RoleUser)
			req.SetPathValue("eventID", tt.eventID)
			rec := httptest.NewRecorder()

			ctrl.Join(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			} else {
				assert.Nil(t, resp.Error)
				assert.NotNil(t, resp.Data)
			}
		})
	}
}

func TestRegistrationController_Join_Unauthenticated(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &fakeRegistrationService{})
	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	rec := httptest.NewRecorder()

	ctrl.Join(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationController_Leave(t *testing.T) {
	tests := []struct {
		name         string
		svc          *fakeRegistrationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "withdrawn",
			svc:        &fakeRegistrationService{},
			wantStatus: http.StatusOK,
		},
		{
			name:         "no registration",
			svc:          &fakeRegistrationService{err: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "event already started",
			svc:          &fakeRegistrationService{err: domain.ErrEventStarted},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeEventStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := authedRequest(http.MethodDelete, "/events/"+testEventID+"/registrations", nil, testUserID, domain.RoleUser)
			req.SetPathValue("eventID", testEventID)
			rec := httptest.NewRecorder()

			ctrl.Leave(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBodyCode != "" {
				resp := decodeEnvelope(t, rec)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			}
		})
	}
}

func TestRegistrationController_Approve(t *testing.T) {
	tests := []struct {
		name         string
		svc          *fakeRegistrationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "approved",
			svc:        &fakeRegistrationService{reg: &domain.Registration{EventID: testEventID, UserID: testUserID, Status: domain.RegistrationApproved}},
			wantStatus: http.StatusOK,
		},
		{
			name:         "not a manager",
			svc:          &fakeRegistrationService{err: domain.ErrForbidden},
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
		{
			name:         "capacity reached under lock",
			svc:          &fakeRegistrationService{err: domain.ErrEventFull},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeEventFull,
		},
		{
			name:         "registration not pending",
			svc:          &fakeRegistrationService{err: domain.ErrInvalidInput},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "registration not found",
			svc:          &fakeRegistrationService{err: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := authedRequest(http.MethodPost, "/manage/events/"+testEventID+"/registrations/"+testUserID+"/approve", nil, "33333333-3333-3333-3333-333333333333", domain.RoleManager)
			req.SetPathValue("eventID", testEventID)
			req.SetPathValue("userID", testUserID)
			rec := httptest.NewRecorder()

			ctrl.Approve(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBodyCode != "" {
				resp := decodeEnvelope(t, rec)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			}
		})
	}
}

func TestRegistrationController_MarkCompletion(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		svc          *fakeRegistrationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "completed with note",
			body:       `{"status":"completed","note":"showed up and did great"}`,
			svc:        &fakeRegistrationService{reg: &domain.Registration{EventID: testEventID, UserID: testUserID, Status: domain.RegistrationApproved}},
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing note",
			body:         `{"status":"completed","note":""}`,
			svc:          &fakeRegistrationService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "bad status value",
			body:         `{"status":"done","note":"hi"}`,
			svc:          &fakeRegistrationService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "event not ended",
			body:         `{"status":"failed","note":"no show"}`,
			svc:          &fakeRegistrationService{err: domain.ErrEventNotEnded},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "no approved registration",
			body:         `{"status":"failed","note":"no show"}`,
			svc:          &fakeRegistrationService{err: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := authedRequest(http.MethodPost, "/manage/events/"+testEventID+"/registrations/"+testUserID+"/completion", bytes.NewBufferString(tt.body), "33333333-3333-3333-3333-333333333333", domain.RoleManager)
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("eventID", testEventID)
			req.SetPathValue("userID", testUserID)
			rec := httptest.NewRecorder()

			ctrl.MarkCompletion(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "showed up and did great", tt.svc.lastNote)
			}
			if tt.wantBodyCode != "" {
				resp := decodeEnvelope(t, rec)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			}
		})
	}
}

func TestRegistrationController_ListForEvent(t *testing.T) {
	t.Run("manager sees registrants", func(t *testing.T) {
		svc := &fakeRegistrationService{byEvent: []*domain.RegistrationWithUser{
			{Registration: &domain.Registration{EventID: testEventID, UserID: testUserID, Status: domain.RegistrationPending}},
		}}
		ctrl := NewRegistrationController(testLogger(), svc)
		req := authedRequest(http.MethodGet, "/manage/events/"+testEventID+"/registrations", nil, "33333333-3333-3333-3333-333333333333", domain.RoleManager)
		req.SetPathValue("eventID", testEventID)
		rec := httptest.NewRecorder()

		ctrl.ListForEvent(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []*domain.RegistrationWithUser `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Data, 1)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger(), &fakeRegistrationService{err: domain.ErrForbidden})
		req := authedRequest(http.MethodGet, "/manage/events/"+testEventID+"/registrations", nil, testUserID, domain.RoleManager)
		req.SetPathValue("eventID", testEventID)
		rec := httptest.NewRecorder()

		ctrl.ListForEvent(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRegistrationController_History(t *testing.T) {
	svc := &fakeRegistrationService{history: []*domain.HistoryEntry{
		{Event: &domain.Event{ID: testEventID}, Hours: 1.5},
		{Event: &domain.Event{ID: "44444444-4444-4444-4444-444444444444"}, Hours: 2.0},
	}}
	ctrl := NewRegistrationController(testLogger(), svc)
	req := authedRequest(http.MethodGet, "/users/me/history", nil, testUserID, domain.RoleUser)
	rec := httptest.NewRecorder()

	ctrl.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data HistoryResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data.Entries, 2)
	assert.InDelta(t, 3.5, resp.Data.TotalHours, 1e-9)
}
