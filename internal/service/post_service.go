package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quill-blog/internal/domain"
	"quill-blog/internal/repository"
)

// PostService coordinates blog post operations backed by the repository.
type PostService interface {
	CreatePost(ctx context.Context, authorID int64, input domain.PostInput) (*domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]domain.Post, error)
	UpdatePost(ctx context.Context, id int64, input domain.PostInput) error
	DeletePost(ctx context.Context, id int64) error
}

type postService struct {
	posts repository.PostRepository
	now   func() time.Time
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts, now: time.Now}
}

func (s *postService) CreatePost(ctx context.Context, authorID int64, input domain.PostInput) (*domain.Post, error) {
	if authorID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	input, err := cleanPostInput(input)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Body:     input.Body,
		Date:     s.now().Format(domain.PostDateLayout),
		AuthorID: authorID,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, translatePostErr(err)
	}
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, translatePostErr(err)
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *postService) UpdatePost(ctx context.Context, id int64, input domain.PostInput) error {
	input, err := cleanPostInput(input)
	if err != nil {
		return err
	}
	return translatePostErr(s.posts.Update(ctx, id, input))
}

func (s *postService) DeletePost(ctx context.Context, id int64) error {
	return translatePostErr(s.posts.Delete(ctx, id))
}

func cleanPostInput(input domain.PostInput) (domain.PostInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Subtitle = strings.TrimSpace(input.Subtitle)

	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = "Title is required."
	}
	if input.Subtitle == "" {
		fields["subtitle"] = "Subtitle is required."
	}
	if strings.TrimSpace(input.Body) == "" {
		fields["body"] = "Content is required."
	}
	return input, domain.NewValidationError(fields)
}

func translatePostErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return domain.ErrDuplicateTitle
	default:
		return err
	}
}
