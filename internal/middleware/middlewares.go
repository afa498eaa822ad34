package middleware

import (
	"github.com/hometag/housing-api/internal/server"
)

// Middlewares groups every middleware component so router setup receives
// one object, built once with the shared dependencies.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger to every request.
	ContextEnhancer *ContextEnhancer

	// Tracing installs the New Relic transaction middleware. It is a no-op
	// when New Relic is not configured.
	Tracing *TracingMiddleware

	// RateLimit throttles clients per IP and records throttled requests.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
