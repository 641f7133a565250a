package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"quill-blog/internal/auth"
	"quill-blog/internal/domain"
)

const (
	flashSessionName = "blog_flash"
	sessionKeyCSRF   = "csrf_token"
	csrfFormField    = "csrf_token"
	csrfQueryParam   = "csrf"
	csrfTokenLength  = 32

	identityKey = "blog.identity"
)

// withIdentity resolves the session cookie once and hands the identity to fn.
func (h *Handler) withIdentity(fn func(c *gin.Context, id auth.Identity)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.identity(c)
		c.Set(identityKey, id)
		fn(c, id)
	}
}

func (h *Handler) identity(c *gin.Context) auth.Identity {
	raw, err := c.Cookie(h.cfg.CookieName)
	if err != nil || raw == "" {
		return auth.Anonymous
	}

	sessionID, err := h.tokens.Parse(raw)
	if err != nil {
		h.clearSessionCookie(c)
		return auth.Anonymous
	}

	user, err := h.users.Resolve(c.Request.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.WithError(err).Warn("resolve session")
			return auth.Anonymous
		}
		h.clearSessionCookie(c)
		return auth.Anonymous
	}
	return auth.IdentityFor(user, sessionID)
}

func (h *Handler) setSessionCookie(c *gin.Context, session *domain.Session) error {
	token, err := h.tokens.Issue(session.ID, session.UserID, session.ExpiresAt)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", "", h.cfg.SecureCookies, true)
	return nil
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookies, true)
}

func addFlash(c *gin.Context, message string) {
	sessions.Default(c).AddFlash(message)
}

func takeFlashes(c *gin.Context) []string {
	raw := sessions.Default(c).Flashes()
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func saveSession(c *gin.Context) error {
	return sessions.Default(c).Save()
}

// csrfToken returns the token bound to the visitor's flash session,
// issuing one on first use.
func csrfToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	buf := make([]byte, csrfTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	session.Set(sessionKeyCSRF, token)
	return token, nil
}

func validCSRF(c *gin.Context, submitted string) bool {
	expected, ok := sessions.Default(c).Get(sessionKeyCSRF).(string)
	if !ok || expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// redirect saves pending flashes and sends a 302.
func (h *Handler) redirect(c *gin.Context, location string) {
	if err := saveSession(c); err != nil {
		h.logger.WithError(err).Error("save flash session")
	}
	c.Redirect(http.StatusFound, location)
}
