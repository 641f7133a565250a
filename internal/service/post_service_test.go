package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill-blog/internal/domain"
	"quill-blog/internal/repository/sqlite"
)

func newPostService(t *testing.T) (PostService, int64) {
	t.Helper()

	db := openTestDB(t)
	owner := &domain.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h"}
	_, err := sqlite.NewUserRepository(db).Create(context.Background(), owner)
	require.NoError(t, err)

	svc := NewPostService(sqlite.NewPostRepository(db)).(*postService)
	svc.now = func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }
	return svc, owner.ID
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc, owner := newPostService(t)

	post, err := svc.CreatePost(ctx, owner, domain.PostInput{Title: "  Hello ", Subtitle: "World", Body: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "October 15, 2026", post.Date)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.AuthorName)

	_, err = svc.CreatePost(ctx, owner, domain.PostInput{Title: "Hello", Subtitle: "Again", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)

	_, err = svc.CreatePost(ctx, 0, domain.PostInput{Title: "Anon", Subtitle: "s", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.CreatePost(ctx, owner, domain.PostInput{Title: "", Subtitle: "s", Body: "  "})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "body")
	assert.NotContains(t, verr.Fields, "subtitle")
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, owner := newPostService(t)

	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.CreatePost(ctx, owner, domain.PostInput{Title: title, Subtitle: "s", Body: "b"})
		require.NoError(t, err)
	}

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)

	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"C", "B", "A"}, titles)
}

func TestUpdateAndDeletePost(t *testing.T) {
	ctx := context.Background()
	svc, owner := newPostService(t)

	post, err := svc.CreatePost(ctx, owner, domain.PostInput{Title: "T", Subtitle: "S", Body: "B"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePost(ctx, post.ID, domain.PostInput{Title: "T2", Subtitle: "S2", Body: "B2"}))
	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, post.Date, got.Date)

	assert.ErrorIs(t, svc.UpdatePost(ctx, post.ID, domain.PostInput{}), domain.ErrValidationFailed)
	assert.ErrorIs(t, svc.UpdatePost(ctx, 999, domain.PostInput{Title: "x", Subtitle: "y", Body: "z"}), domain.ErrNotFound)

	require.NoError(t, svc.DeletePost(ctx, post.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, post.ID), domain.ErrNotFound)

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
