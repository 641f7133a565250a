package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"quill-blog/internal/auth"
	"quill-blog/internal/content"
	"quill-blog/internal/domain"
	"quill-blog/internal/service"
)

// Config carries the HTTP-facing settings.
type Config struct {
	Secret         string
	CookieName     string
	SecureCookies  bool
	LoginPerMinute int
	LoginBurst     int
	Metrics        bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	posts    service.PostService
	tokens   *auth.TokenCodec
	renderer *content.Renderer
	store    sessions.Store
	limiter  *loginLimiter
	logger   *logrus.Logger
	cfg      Config
}

func NewHandler(users service.UserService, posts service.PostService, logger *logrus.Logger, cfg Config) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "blog_session"
	}
	if logger == nil {
		logger = logrus.New()
	}

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return &Handler{
		users:    users,
		posts:    posts,
		tokens:   auth.NewTokenCodec(cfg.Secret),
		renderer: content.NewRenderer(),
		store:    store,
		limiter:  newLoginLimiter(cfg.LoginPerMinute, cfg.LoginBurst),
		logger:   logger,
		cfg:      cfg,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(parseTemplates())
	router.Use(requestLogger(h.logger))
	if h.cfg.Metrics {
		router.Use(metricsMiddleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	site := router.Group("/")
	site.Use(sessions.Sessions(flashSessionName, h.store), h.csrfProtect())
	{
		site.GET("/", h.withIdentity(h.home))
		site.GET("/about", h.withIdentity(h.about))
		site.GET("/contact", h.withIdentity(h.contact))
		site.POST("/contact", h.withIdentity(h.contact))

		site.GET("/post/:id", h.withIdentity(h.showPost))
		site.GET("/create-blog", h.withIdentity(h.createPost))
		site.POST("/create-blog", h.withIdentity(h.createPost))
		site.GET("/edit-post/:id", h.withIdentity(h.editPost))
		site.POST("/edit-post/:id", h.withIdentity(h.editPost))
		site.GET("/delete/:id", h.withIdentity(h.deletePost))

		site.GET("/login", h.withIdentity(h.login))
		site.POST("/login", h.throttleLogin(), h.withIdentity(h.login))
		site.GET("/signup", h.withIdentity(h.signup))
		site.POST("/signup", h.withIdentity(h.signup))
		site.GET("/logout", h.withIdentity(h.logout))
	}

	router.NoRoute(sessions.Sessions(flashSessionName, h.store), h.withIdentity(func(c *gin.Context, id auth.Identity) {
		h.renderError(c, id, http.StatusNotFound, "The page you are looking for does not exist.")
	}))
}

// fail maps a service error onto an error page. Unexpected errors are
// logged and shown as 500.
func (h *Handler) fail(c *gin.Context, id auth.Identity, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.renderError(c, id, http.StatusNotFound, "That post could not be found.")
	case errors.Is(err, domain.ErrForbidden):
		h.renderError(c, id, http.StatusForbidden, "You are not allowed to do that.")
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		h.renderError(c, id, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
