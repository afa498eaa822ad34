package router

import (
	"github.com/hometag/housing-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not housing data:
// banner, key diagnostic, health, docs and static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.System.Root)
	r.GET("/test-api-key/", h.System.TestAPIKey)

	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and openapi.html live in ./static.
	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
