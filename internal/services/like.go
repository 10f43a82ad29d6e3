package services

import (
	"context"
	"errors"
	"fmt"

	"volunteerhub/internal/domain"
)

type likeService struct {
	likeRepo domain.LikeRepository
}

// NewLikeService creates a LikeService backed by the given repository.
func NewLikeService(likeRepo domain.LikeRepository) domain.LikeService {
	return &likeService{likeRepo: likeRepo}
}

func (s *likeService) TogglePostLike(ctx context.Context, postID, userID string) (bool, int, error) {
	return s.toggle(ctx, userID, domain.LikeTargetPost, postID)
}

func (s *likeService) ToggleEventLike(ctx context.Context, eventID, userID string) (bool, int, error) {
	return s.toggle(ctx, userID, domain.LikeTargetEvent, eventID)
}

func (s *likeService) toggle(ctx context.Context, userID, targetType, targetID string) (bool, int, error) {
	status, likes, err := s.likeRepo.Toggle(ctx, userID, targetType, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, 0, domain.ErrNotFound
		}
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	return status == 1, likes, nil
}
