package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"quill-blog/internal/auth"
	"quill-blog/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// view is the data every page template receives.
type view struct {
	Identity    auth.Identity
	Flashes     []string
	CSRFToken   string
	Title       string
	Description string

	Posts   []domain.Post
	Post    *postView
	Form    any
	Errors  map[string]string
	Editing bool

	Status  int
	Message string
}

type postView struct {
	ID         int64
	Title      string
	Subtitle   string
	Body       template.HTML
	Date       string
	AuthorName string
}

// render fills the per-request parts of v and writes the named page. The
// flash/CSRF session is saved before anything is written.
func (h *Handler) render(c *gin.Context, status int, name string, id auth.Identity, v view) {
	v.Identity = id
	v.Flashes = takeFlashes(c)
	token, err := csrfToken(c)
	if err != nil {
		h.logger.WithError(err).Error("issue csrf token")
	}
	v.CSRFToken = token
	if err := saveSession(c); err != nil {
		h.logger.WithError(err).Error("save flash session")
	}
	c.HTML(status, name, v)
}

func (h *Handler) renderError(c *gin.Context, id auth.Identity, status int, message string) {
	h.render(c, status, "error.html", id, view{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}
