// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups, mapping
// paths to their handlers.
package router

import (
	"github.com/hometag/housing-api/internal/handler"
	"github.com/hometag/housing-api/internal/middleware"
	"github.com/hometag/housing-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global error handler, the
// middleware chain and every route.
//
// Order matters: the rate limiter rejects early, the request id exists
// before anything logs, the New Relic transaction exists before the
// context logger reads trace ids from it, and Recover sits innermost so a
// panic still passes through the request logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerHousingRoutes(router, h)

	return router
}
