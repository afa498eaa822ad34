package census

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrNoData is returned when the API answers successfully but has no value
// row for the requested geography.
var ErrNoData = errors.New("no data found")

// UnavailableError is a transport failure or timeout while calling the API.
type UnavailableError struct {
	Dataset string
	Err     error
}

func newUnavailableError(dataset string, err error) *UnavailableError {
	// *url.Error embeds the full request URL, key included. Keep only the cause.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &UnavailableError{Dataset: dataset, Err: err}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("census %s request failed: %v", e.Dataset, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// RejectedError is a non-success HTTP status returned by the API, for
// example an invalid key or an unknown variable.
type RejectedError struct {
	Dataset    string
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError means the body was not the expected two-row
// tabular JSON.
type MalformedResponseError struct {
	Dataset string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed census %s response: %v", e.Dataset, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
