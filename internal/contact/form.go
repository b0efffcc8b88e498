// Package contact validates contact form submissions and delivers them by
// email.
package contact

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is a contact form submission as posted by the site.
type Form struct {
	Name    string `form:"name" json:"name" validate:"min=2,max=50"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Subject string `form:"subject" json:"subject" validate:"required"`
	Budget  string `form:"budget" json:"budget" validate:"max=100"`
	Message string `form:"message" json:"message" validate:"min=10,max=1000"`
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Budget:  strings.TrimSpace(f.Budget),
		Message: strings.TrimSpace(f.Message),
	}
}

// FieldErrors maps a form field to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid contact form: " + strings.Join(fields, ", ")
}

var fieldMessages = map[string]string{
	"name":    "Name must be between 2 and 50 characters",
	"email":   "Please enter a valid email address",
	"subject": "Please choose a subject",
	"budget":  "Budget is too long",
	"message": "Message must be between 10 and 1000 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("form")
	})
	return v
}

// Validate checks a normalized form. It returns FieldErrors when any field
// is invalid.
func Validate(f Form) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := FieldErrors{}
	for _, v := range verrs {
		fe[v.Field()] = fieldMessages[v.Field()]
	}
	return fe
}
