package domain

import (
	"context"
	"time"
)

// Application roles.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User account statuses.
const (
	UserStatusActive = "active"
	UserStatusLocked = "locked"
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new active User. ID is set by the repository on create.
func NewUser(username, email, passwordHash, salt, role string, createdAt time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         role,
		Status:       UserStatusActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenClaims is the identity carried by a verified token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

// TokenIssuer issues signed tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// TokenPair bundles the short-lived access token with the longer-lived
// refresh token delivered as an HTTP-only cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, search string, params PaginationParams) ([]*User, int, error)
}

// AuthService handles sign-up, login, and token refresh.
type AuthService interface {
	SignUp(ctx context.Context, username, email, password, role string) (*User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// UserService defines profile and admin moderation operations.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	ListUsers(ctx context.Context, callerID, search string, params PaginationParams) ([]*User, int, error)
	BanUser(ctx context.Context, callerID, userID string) error
	UnbanUser(ctx context.Context, callerID, userID string) error
}
