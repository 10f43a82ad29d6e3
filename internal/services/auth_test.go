package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteerhub/internal/domain"
)

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokenCodec struct {
	issued int
	err    error
	claims *domain.TokenClaims
}

func (f *fakeTokenCodec) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued++
	return "token-" + userID, nil
}

func (f *fakeTokenCodec) Verify(token string) (*domain.TokenClaims, error) {
	if f.claims == nil {
		return nil, errors.New("bad token")
	}
	return f.claims, nil
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     string
		repo     *mockUserRepository
		wantErr  error
		wantRole string
	}{
		{
			name:     "defaults to user role",
			username: "vol",
			email:    "vol@example.com",
			password: "long-enough",
			repo:     &mockUserRepository{users: map[string]*domain.User{}},
			wantRole: domain.RoleUser,
		},
		{
			name:     "manager role honored",
			username: "mgr",
			email:    "mgr@example.com",
			password: "long-enough",
			role:     "manager",
			repo:     &mockUserRepository{users: map[string]*domain.User{}},
			wantRole: domain.RoleManager,
		},
		{
			name:     "admin cannot be chosen at sign-up",
			username: "sneaky",
			email:    "sneaky@example.com",
			password: "long-enough",
			role:     "admin",
			repo:     &mockUserRepository{users: map[string]*domain.User{}},
			wantRole: domain.RoleUser,
		},
		{
			name:     "rejects invalid email",
			username: "vol",
			email:    "not-an-email",
			password: "long-enough",
			repo:     &mockUserRepository{users: map[string]*domain.User{}},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "rejects short password",
			username: "vol",
			email:    "vol@example.com",
			password: "short",
			repo:     &mockUserRepository{users: map[string]*domain.User{}},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "duplicate email",
			username: "vol",
			email:    "vol@example.com",
			password: "long-enough",
			repo:     &mockUserRepository{err: domain.ErrDuplicateEmail},
			wantErr:  domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &authService{
				userRepo:      tt.repo,
				hasher:        fakeHasher{},
				tokenIssuer:   &fakeTokenCodec{},
				tokenVerifier: &fakeTokenCodec{},
				accessExpiry:  15 * time.Minute,
				refreshExpiry: 7 * 24 * time.Hour,
			}

			user, err := svc.SignUp(context.Background(), tt.username, tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != tt.wantRole {
				t.Fatalf("expected role %q, got %q", tt.wantRole, user.Role)
			}
			if user.Status != domain.UserStatusActive {
				t.Fatalf("expected active status, got %q", user.Status)
			}
			if user.PasswordHash == tt.password {
				t.Fatal("password stored in plain text")
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	active := &domain.User{
		ID:           "u1",
		Email:        "vol@example.com",
		PasswordHash: "salt:correct-pass",
		Salt:         "salt",
		Status:       domain.UserStatusActive,
		Role:         domain.RoleUser,
	}
	locked := &domain.User{
		ID:           "u2",
		Email:        "locked@example.com",
		PasswordHash: "salt:correct-pass",
		Salt:         "salt",
		Status:       domain.UserStatusLocked,
		Role:         domain.RoleUser,
	}
	users := map[string]*domain.User{"u1": active, "u2": locked}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
		locked   bool
	}{
		{
			name:     "success",
			email:    "vol@example.com",
			password: "correct-pass",
		},
		{
			name:     "email is case-insensitive",
			email:    "VOL@Example.COM",
			password: "correct-pass",
		},
		{
			name:     "wrong password",
			email:    "vol@example.com",
			password: "wrong",
			wantErr:  true,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "correct-pass",
			wantErr:  true,
		},
		{
			name:     "locked account",
			email:    "locked@example.com",
			password: "correct-pass",
			wantErr:  true,
			locked:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &fakeTokenCodec{}
			svc := &authService{
				userRepo:      &mockUserRepository{users: users},
				hasher:        fakeHasher{},
				tokenIssuer:   codec,
				tokenVerifier: codec,
				accessExpiry:  15 * time.Minute,
				refreshExpiry: 7 * 24 * time.Hour,
			}

			pair, user, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.locked && !errors.Is(err, domain.ErrUserLocked) {
					t.Fatalf("expected ErrUserLocked, got %v", err)
				}
				if !tt.locked && errors.Is(err, domain.ErrUserLocked) {
					t.Fatalf("credential failures must not reveal lock state: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.AccessToken == "" || pair.RefreshToken == "" {
				t.Fatal("expected both tokens")
			}
			if user.ID != "u1" {
				t.Fatalf("expected user u1, got %q", user.ID)
			}
			if codec.issued != 2 {
				t.Fatalf("expected 2 issued tokens, got %d", codec.issued)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	active := &domain.User{ID: "u1", Email: "vol@example.com", Status: domain.UserStatusActive, Role: domain.RoleUser}
	locked := &domain.User{ID: "u2", Email: "locked@example.com", Status: domain.UserStatusLocked, Role: domain.RoleUser}
	users := map[string]*domain.User{"u1": active, "u2": locked}

	tests := []struct {
		name    string
		claims  *domain.TokenClaims
		wantErr error
		fail    bool
	}{
		{
			name:   "success",
			claims: &domain.TokenClaims{UserID: "u1", Email: "vol@example.com", Role: domain.RoleUser},
		},
		{
			name: "invalid token",
			fail: true,
		},
		{
			name:   "deleted user",
			claims: &domain.TokenClaims{UserID: "ghost"},
			fail:   true,
		},
		{
			name:    "locked since issue",
			claims:  &domain.TokenClaims{UserID: "u2"},
			wantErr: domain.ErrUserLocked,
			fail:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &fakeTokenCodec{claims: tt.claims}
			svc := &authService{
				userRepo:      &mockUserRepository{users: users},
				hasher:        fakeHasher{},
				tokenIssuer:   codec,
				tokenVerifier: codec,
				accessExpiry:  15 * time.Minute,
				refreshExpiry: 7 * 24 * time.Hour,
			}

			pair, err := svc.Refresh(context.Background(), "some-refresh-token")
			if tt.fail {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.AccessToken == "" || pair.RefreshToken == "" {
				t.Fatal("expected reissued token pair")
			}
		})
	}
}
