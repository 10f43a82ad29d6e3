package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"volunteerhub/internal/delivery/http/helpers"
	"volunteerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService implements domain.AuthService with field-controlled returns.
type fakeAuthService struct {
	user *domain.User
	pair *domain.TokenPair
	err  error
}

func (f *fakeAuthService) SignUp(_ context.Context, _, _, _, _ string) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*domain.TokenPair, *domain.User, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.pair, f.user, nil
}

func (f *fakeAuthService) Refresh(_ context.Context, _ string) (*domain.TokenPair, error) {
	return f.pair, f.err
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		svc          *fakeAuthService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "created",
			body:       `{"username":"vol","email":"vol@example.com","password":"supersecret"}`,
			svc:        &fakeAuthService{user: &domain.User{ID: testUserID, Email: "vol@example.com", Role: domain.RoleUser}},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid email",
			body:         `{"username":"vol","email":"not-an-email","password":"supersecret"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "short password",
			body:         `{"username":"vol","email":"vol@example.com","password":"short"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "admin role not accepted",
			body:         `{"username":"vol","email":"vol@example.com","password":"supersecret","role":"admin"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "duplicate email",
			body:         `{"username":"vol","email":"vol@example.com","password":"supersecret"}`,
			svc:          &fakeAuthService{err: domain.ErrDuplicateEmail},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc, 7*24*time.Hour, false)
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			ctrl.SignUp(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			} else {
				assert.Nil(t, resp.Error)
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	pair := &domain.TokenPair{AccessToken: "access-abc", RefreshToken: "refresh-xyz"}

	tests := []struct {
		name         string
		svc          *fakeAuthService
		wantStatus   int
		wantBodyCode string
		wantCookie   bool
	}{
		{
			name:       "success sets refresh cookie",
			svc:        &fakeAuthService{pair: pair, user: &domain.User{ID: testUserID}},
			wantStatus: http.StatusOK,
			wantCookie: true,
		},
		{
			name:         "bad credentials",
			svc:          &fakeAuthService{err: errors.New("invalid credentials")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "locked account",
			svc:          &fakeAuthService{err: domain.ErrUserLocked},
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc, 7*24*time.Hour, true)
			body := `{"email":"vol@example.com","password":"supersecret"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			ctrl.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			cookie := refreshCookie(rec)
			if tt.wantCookie {
				require.NotNil(t, cookie)
				assert.Equal(t, "refresh-xyz", cookie.Value)
				assert.Equal(t, "/auth", cookie.Path)
				assert.True(t, cookie.HttpOnly)
				assert.True(t, cookie.Secure)

				var resp struct {
					Data LoginResponse `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "access-abc", resp.Data.Token)
				assert.Equal(t, "Bearer", resp.Data.TokenType)
			} else {
				assert.Nil(t, cookie)
				resp := decodeEnvelope(t, rec)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			}
		})
	}
}

func TestAuthController_Refresh(t *testing.T) {
	pair := &domain.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}

	t.Run("reissues both tokens", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &fakeAuthService{pair: pair}, 7*24*time.Hour, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-old"})
		rec := httptest.NewRecorder()

		ctrl.Refresh(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := refreshCookie(rec)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh-new", cookie.Value)
	})

	t.Run("missing cookie", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &fakeAuthService{pair: pair}, 7*24*time.Hour, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		rec := httptest.NewRecorder()

		ctrl.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &fakeAuthService{err: errors.New("invalid token")}, 7*24*time.Hour, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "bad"})
		rec := httptest.NewRecorder()

		ctrl.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthController_Logout(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &fakeAuthService{}, 7*24*time.Hour, false)
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	ctrl.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
