package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo      domain.UserRepository
	hasher        domain.PasswordHasher
	tokenIssuer   domain.TokenIssuer
	tokenVerifier domain.TokenVerifier
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewAuthService creates an AuthService with the given user repository and
// token ports. Access tokens are short-lived bearer tokens; refresh tokens
// are longer-lived and delivered via an HTTP-only cookie by the controller.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenVerifier domain.TokenVerifier,
	accessExpiry, refreshExpiry time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:      userRepo,
		hasher:        hasher,
		tokenIssuer:   tokenIssuer,
		tokenVerifier: tokenVerifier,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) SignUp(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrInvalidInput)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, domain.ErrInvalidInput)
	}

	// Only user and manager can be chosen at sign-up; admins are provisioned
	// out of band.
	roleCode := strings.TrimSpace(strings.ToLower(role))
	if roleCode != domain.RoleManager {
		roleCode = domain.RoleUser
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(username, email, hash, salt, roleCode, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, nil, fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}
	if user.Status == domain.UserStatusLocked {
		return nil, nil, domain.ErrUserLocked
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenVerifier.Verify(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if user.Status == domain.UserStatusLocked {
		return nil, domain.ErrUserLocked
	}
	return s.issuePair(user)
}

func (s *authService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
