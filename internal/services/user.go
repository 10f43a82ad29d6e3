package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

type userService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a UserService backed by the given repository.
func NewUserService(userRepo domain.UserRepository) domain.UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return fmt.Errorf("username is required: %w", domain.ErrInvalidInput)
	}
	if user.Email != "" && !emailRegexp.MatchString(user.Email) {
		return fmt.Errorf("invalid email format: %w", domain.ErrInvalidInput)
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// requireAdmin returns ErrForbidden unless callerID has the admin role.
func (s *userService) requireAdmin(ctx context.Context, callerID string) error {
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

func (s *userService) ListUsers(ctx context.Context, callerID, search string, params domain.PaginationParams) ([]*domain.User, int, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, total, nil
}

// setStatus flips a user's account status. Bans never delete history: the
// user row and all registrations stay in place.
func (s *userService) setStatus(ctx context.Context, callerID, userID, status string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == userID {
		return fmt.Errorf("cannot change own status: %w", domain.ErrInvalidInput)
	}
	if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("set user status: %w", err)
	}
	return nil
}

func (s *userService) BanUser(ctx context.Context, callerID, userID string) error {
	return s.setStatus(ctx, callerID, userID, domain.UserStatusLocked)
}

func (s *userService) UnbanUser(ctx context.Context, callerID, userID string) error {
	return s.setStatus(ctx, callerID, userID, domain.UserStatusActive)
}
