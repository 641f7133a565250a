package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quill-blog/internal/auth"
	"quill-blog/internal/domain"
)

const duplicateTitleMessage = "A post with this title already exists."

func (h *Handler) home(c *gin.Context, id auth.Identity) {
	posts, err := h.posts.ListPosts(c.Request.Context())
	if err != nil {
		h.fail(c, id, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", id, view{Posts: posts})
}

func (h *Handler) showPost(c *gin.Context, id auth.Identity) {
	postID, ok := parseID(c)
	if !ok {
		h.fail(c, id, domain.ErrNotFound)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		h.fail(c, id, err)
		return
	}

	h.render(c, http.StatusOK, "post.html", id, view{
		Title:       post.Title,
		Description: truncate(h.renderer.Plain(post.Body), 160),
		Post: &postView{
			ID:         post.ID,
			Title:      post.Title,
			Subtitle:   post.Subtitle,
			Body:       h.renderer.Render(post.Body),
			Date:       post.Date,
			AuthorName: post.AuthorName,
		},
	})
}

func (h *Handler) createPost(c *gin.Context, id auth.Identity) {
	if err := auth.RequireAuthenticated(id); err != nil {
		addFlash(c, "You need to be signed in to make a post")
		h.redirect(c, "/")
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderEditor(c, http.StatusOK, id, false, postForm{}, nil)
		return
	}

	var form postForm
	fields, err := bindForm(c, &form)
	if err != nil {
		h.renderEditor(c, http.StatusBadRequest, id, false, form, nil)
		return
	}
	if fields != nil {
		h.renderEditor(c, http.StatusUnprocessableEntity, id, false, form, fields)
		return
	}

	_, err = h.posts.CreatePost(c.Request.Context(), id.UserID, form.input())
	if status, fields, ok := formFailure(err); ok {
		h.renderEditor(c, status, id, false, form, fields)
		return
	}
	if err != nil {
		h.fail(c, id, err)
		return
	}
	h.redirect(c, "/")
}

func (h *Handler) editPost(c *gin.Context, id auth.Identity) {
	if err := auth.RequirePrivileged(id); err != nil {
		h.fail(c, id, err)
		return
	}

	postID, ok := parseID(c)
	if !ok {
		h.fail(c, id, domain.ErrNotFound)
		return
	}

	if c.Request.Method != http.MethodPost {
		post, err := h.posts.GetPost(c.Request.Context(), postID)
		if err != nil {
			h.fail(c, id, err)
			return
		}
		form := postForm{Title: post.Title, Subtitle: post.Subtitle, Body: post.Body}
		h.renderEditor(c, http.StatusOK, id, true, form, nil)
		return
	}

	var form postForm
	fields, err := bindForm(c, &form)
	if err != nil {
		h.renderEditor(c, http.StatusBadRequest, id, true, form, nil)
		return
	}
	if fields != nil {
		h.renderEditor(c, http.StatusUnprocessableEntity, id, true, form, fields)
		return
	}

	err = h.posts.UpdatePost(c.Request.Context(), postID, form.input())
	if status, fields, ok := formFailure(err); ok {
		h.renderEditor(c, status, id, true, form, fields)
		return
	}
	if err != nil {
		h.fail(c, id, err)
		return
	}
	h.redirect(c, "/post/"+strconv.FormatInt(postID, 10))
}

func (h *Handler) deletePost(c *gin.Context, id auth.Identity) {
	if err := auth.RequirePrivileged(id); err != nil {
		h.fail(c, id, err)
		return
	}
	if !validCSRF(c, c.Query(csrfQueryParam)) {
		h.renderError(c, id, http.StatusForbidden, "The link has expired. Please reload the page and try again.")
		return
	}

	postID, ok := parseID(c)
	if !ok {
		h.fail(c, id, domain.ErrNotFound)
		return
	}
	if err := h.posts.DeletePost(c.Request.Context(), postID); err != nil {
		h.fail(c, id, err)
		return
	}
	h.redirect(c, "/")
}

func (h *Handler) renderEditor(c *gin.Context, status int, id auth.Identity, editing bool, form postForm, fields map[string]string) {
	title := "New Post"
	if editing {
		title = "Edit Post"
	}
	h.render(c, status, "editor.html", id, view{
		Title:   title,
		Form:    form,
		Errors:  fields,
		Editing: editing,
	})
}

func (f postForm) input() domain.PostInput {
	return domain.PostInput{Title: f.Title, Subtitle: f.Subtitle, Body: f.Body}
}

// formFailure reports the errors that are shown on the post form rather
// than as an error page.
func formFailure(err error) (int, map[string]string, bool) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return 0, nil, false
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Fields, true
	case errors.Is(err, domain.ErrDuplicateTitle):
		return http.StatusConflict, map[string]string{"title": duplicateTitleMessage}, true
	default:
		return 0, nil, false
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
