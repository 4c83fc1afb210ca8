// Package forms parses and validates request input into typed values before
// any entity is constructed. Messages follow the wording users of the original
// HTML forms already know.
package forms

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired       = "This field is required."
	MsgInvalidEmail   = "Invalid email address."
	MsgDuplicateEmail = "Please use a different email address."
	MsgDuplicateName  = "Please use a different name."
	MsgInvalidChoice  = "Not a valid choice."
	MsgPasswordMatch  = "Field must be equal to password."
	MsgInvalidInteger = "Not a valid integer value."
)

// FieldErrors maps a form field to its validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends msg to field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field already failed.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// EmailChecker reports whether an email is already registered.
type EmailChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// CategoryNameChecker reports whether a category other than excludeID uses name.
type CategoryNameChecker interface {
	CategoryNameExists(ctx context.Context, name string, excludeID uint) (bool, error)
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the form field name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects empty and whitespace-only strings
	if err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
}

// check runs struct validation and converts failures to FieldErrors.
func check(s interface{}) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("_form", err.Error())
		return errs
	}
	for _, fe := range validationErrors {
		errs.Add(fe.Field(), fieldMessage(s, fe))
	}
	return errs
}

func fieldMessage(s interface{}, fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "eqfield":
		return MsgPasswordMatch
	case "min", "max":
		return lengthMessage(s, fe.StructField())
	default:
		return fmt.Sprintf("Failed validation for '%s'.", fe.Tag())
	}
}

// lengthMessage mirrors WTForms Length by reporting both bounds held in the
// field's validate tag.
func lengthMessage(s interface{}, structField string) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	min, max := "1", "?"
	if f, ok := t.FieldByName(structField); ok {
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			switch {
			case strings.HasPrefix(rule, "min="):
				min = strings.TrimPrefix(rule, "min=")
			case strings.HasPrefix(rule, "max="):
				max = strings.TrimPrefix(rule, "max=")
			}
		}
	}
	return fmt.Sprintf("Field must be between %s and %s characters long.", min, max)
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
