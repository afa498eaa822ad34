// Package middleware holds the global Echo middleware: rate limiting,
// CORS, request ids, New Relic tracing, request-scoped logging, request
// logging, panic recovery and the global error handler.
package middleware
