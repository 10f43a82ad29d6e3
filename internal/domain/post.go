package domain

import (
	"context"
	"time"
)

// Post is a community post authored by a user.
// swagger:model Post
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostRepository defines the interface for post storage.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, params PaginationParams) ([]*Post, int, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
}

// PostService defines post CRUD with ownership checks.
type PostService interface {
	CreatePost(ctx context.Context, post *Post, authorID string) error
	GetPost(ctx context.Context, postID string) (*Post, error)
	ListPosts(ctx context.Context, params PaginationParams) ([]*Post, int, error)
	UpdatePost(ctx context.Context, post *Post, callerID string) (*Post, error)
	DeletePost(ctx context.Context, postID, callerID string) error
}
