package errs

import "strings"

// FieldError is a validation problem with a single request parameter.
//
//	{ "field": "zip_codes", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error body returned to API clients.
//
//   - Code: machine-friendly code, e.g. "BAD_REQUEST".
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets a frontend replace Message with its own copy.
//   - Errors: per-parameter validation errors.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError, so errors.Is(err, &HTTPError{}) asks "is this
// already client-facing?" without comparing fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
