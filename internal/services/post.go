package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

type postService struct {
	postRepo domain.PostRepository
	userRepo domain.UserRepository
}

// NewPostService creates a PostService with the given repositories.
func NewPostService(postRepo domain.PostRepository, userRepo domain.UserRepository) domain.PostService {
	return &postService{postRepo: postRepo, userRepo: userRepo}
}

func (s *postService) CreatePost(ctx context.Context, post *domain.Post, authorID string) error {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(post.Content) == "" {
		return fmt.Errorf("content is required: %w", domain.ErrInvalidInput)
	}
	now := time.Now()
	post.AuthorID = authorID
	post.CreatedAt = now
	post.UpdatedAt = now
	return s.postRepo.Create(ctx, post)
}

func (s *postService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, params domain.PaginationParams) ([]*domain.Post, int, error) {
	posts, total, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, total, nil
}

// getOwned fetches the post and verifies callerID is its author or an admin.
func (s *postService) getOwned(ctx context.Context, postID, callerID string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post.AuthorID == callerID {
		return post, nil
	}
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil || caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, post *domain.Post, callerID string) (*domain.Post, error) {
	if _, err := s.getOwned(ctx, post.ID, callerID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetPost(ctx, post.ID)
}

func (s *postService) DeletePost(ctx context.Context, postID, callerID string) error {
	if _, err := s.getOwned(ctx, postID, callerID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
