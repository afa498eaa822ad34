// Package errs defines the client-facing error shape of the API.
//
// Every error that reaches the global error handler is rendered as an
// HTTPError so clients always receive the same JSON structure.
package errs
