package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quill-blog/internal/auth"
	"quill-blog/internal/domain"
)

func (h *Handler) login(c *gin.Context, id auth.Identity) {
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "login.html", id, view{Title: "Log In", Form: loginForm{}})
		return
	}

	var form loginForm
	fields, err := bindForm(c, &form)
	if err != nil || fields != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "login.html", id, view{Title: "Log In", Form: form, Errors: fields})
		return
	}

	session, err := h.users.Login(c.Request.Context(), form.Email, form.Password)
	var verr *domain.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnknownEmail):
		addFlash(c, "That Email does not exist, please try again.")
		h.redirect(c, "/login")
		return
	case errors.Is(err, domain.ErrInvalidPassword):
		addFlash(c, "Password incorrect, please try again.")
		form.Password = ""
		h.render(c, http.StatusOK, "login.html", id, view{Title: "Log In", Form: form})
		return
	case errors.As(err, &verr):
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "login.html", id, view{Title: "Log In", Form: form, Errors: verr.Fields})
		return
	default:
		h.fail(c, id, err)
		return
	}

	h.switchSession(c, id, session)
}

func (h *Handler) signup(c *gin.Context, id auth.Identity) {
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "register.html", id, view{Title: "Register", Form: signupForm{}})
		return
	}

	var form signupForm
	fields, err := bindForm(c, &form)
	if err != nil || fields != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "register.html", id, view{Title: "Register", Form: form, Errors: fields})
		return
	}

	session, err := h.users.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	var verr *domain.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateEmail):
		addFlash(c, "You've already signed up with that email, log in instead!")
		h.redirect(c, "/login")
		return
	case errors.As(err, &verr):
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "register.html", id, view{Title: "Register", Form: form, Errors: verr.Fields})
		return
	default:
		h.fail(c, id, err)
		return
	}

	h.switchSession(c, id, session)
}

// switchSession ends the visitor's previous session, if any, and installs
// the new one.
func (h *Handler) switchSession(c *gin.Context, id auth.Identity, session *domain.Session) {
	if id.SessionID != "" && id.SessionID != session.ID {
		if err := h.users.Logout(c.Request.Context(), id.SessionID); err != nil {
			h.logger.WithError(err).Warn("end previous session")
		}
	}
	if err := h.setSessionCookie(c, session); err != nil {
		h.fail(c, id, err)
		return
	}
	h.redirect(c, "/")
}

func (h *Handler) logout(c *gin.Context, id auth.Identity) {
	if err := h.users.Logout(c.Request.Context(), id.SessionID); err != nil {
		h.logger.WithError(err).Warn("logout")
	}
	h.clearSessionCookie(c)
	h.redirect(c, "/")
}
