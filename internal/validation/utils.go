package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hometag/housing-api/internal/errs"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request types that know how to validate
// themselves, typically by running validator.Struct on their tags.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that cannot be expressed as a tag.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a list of custom validation errors.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds path, query and body parameters into payload and
// validates it. Failures are returned as a 400 *errs.HTTPError.
//
// payload must be a pointer so Bind can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// bindErrorMessage extracts Echo's human-readable bind message.
func bindErrorMessage(err error) string {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) && bindErr.HTTPError != nil {
		if msg, ok := bindErr.Message.(string); ok {
			return fmt.Sprintf("%s: %s", bindErr.Field, msg)
		}
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return msg
		}
	}
	return "invalid request parameters"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, e := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "request", Error: err.Error()}}
	}

	for _, e := range validationErrors {
		var msg string

		switch e.Tag() {
		case "required":
			msg = "is required"

		case "min":
			switch e.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must be at least %s characters", e.Param())
			case reflect.Slice:
				msg = fmt.Sprintf("must contain at least %s items", e.Param())
			default:
				msg = fmt.Sprintf("must be at least %s", e.Param())
			}

		case "max":
			switch e.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must not exceed %s characters", e.Param())
			case reflect.Slice:
				msg = fmt.Sprintf("must not contain more than %s items", e.Param())
			default:
				msg = fmt.Sprintf("must not exceed %s", e.Param())
			}

		default:
			if e.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", e.Field(), e.Tag(), e.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", e.Field(), e.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fieldName(e),
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// fieldName prefers the `query` tag name registered on the validator, so
// the client sees "zip_codes" rather than "ZipCodes". Errors on slice
// elements keep their index, e.g. "zip_codes[2]".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// New returns a validator that reports fields by their `query` tag name.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
