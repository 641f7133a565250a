package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"quill-blog/internal/auth"
)

func (h *Handler) about(c *gin.Context, id auth.Identity) {
	h.render(c, http.StatusOK, "about.html", id, view{Title: "About"})
}

// contact validates the message and acknowledges it. Nothing is stored or sent.
func (h *Handler) contact(c *gin.Context, id auth.Identity) {
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "contact.html", id, view{Title: "Contact", Form: contactForm{}})
		return
	}

	var form contactForm
	fields, err := bindForm(c, &form)
	if err != nil || fields != nil {
		h.render(c, http.StatusUnprocessableEntity, "contact.html", id, view{Title: "Contact", Form: form, Errors: fields})
		return
	}

	h.logger.WithField("email", form.Email).Info("contact message received")
	addFlash(c, fmt.Sprintf("Hello %s, it's nice to hear from you! I will contact you soon.", form.Name))
	h.redirect(c, "/contact")
}
