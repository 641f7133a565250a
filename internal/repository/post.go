package repository

import (
	"context"

	"quill-blog/internal/domain"
)

// PostRepository exposes persistence operations for blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// List returns every post, most recently created first.
	List(ctx context.Context) ([]domain.Post, error)
	Update(ctx context.Context, id int64, input domain.PostInput) error
	Delete(ctx context.Context, id int64) error
}
