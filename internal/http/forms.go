package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type postForm struct {
	Title    string `form:"title" binding:"required,max=250"`
	Subtitle string `form:"subtitle" binding:"required,max=250"`
	Body     string `form:"body" binding:"required"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	Name     string `form:"name" binding:"required,max=1000"`
	Email    string `form:"email" binding:"required,email,max=100"`
	Password string `form:"password" binding:"required"`
}

type contactForm struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required,email"`
	Phone   string `form:"phone_number" binding:"required"`
	Message string `form:"message" binding:"required"`
}

// bindForm decodes the submitted form into dst and returns a message per
// invalid field, keyed by the form field name.
func bindForm(c *gin.Context, dst any) (map[string]string, error) {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[formName(dst, fe.StructField())] = fieldMessage(fe)
	}
	return fields, nil
}

// formName returns the form tag of the named field of the struct dst
// points to.
func formName(dst any, field string) string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if sf, ok := t.FieldByName(field); ok {
		if name, _, _ := strings.Cut(sf.Tag.Get("form"), ","); name != "" {
			return name
		}
	}
	return strings.ToLower(field)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "max":
		return "Field cannot be longer than " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}
