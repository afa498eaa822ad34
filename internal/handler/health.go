package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hometag/housing-api/internal/config"
	"github.com/hometag/housing-api/internal/middleware"
	"github.com/hometag/housing-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth reports the process as healthy and, when the "census" check
// is enabled, pings the Census API with the configured key.
//
// It returns 200 when every enabled check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true

	obs := h.server.Config.Observability
	if obs.HealthCheckEnabled(config.HealthCheckCensus) {
		ctx, cancel := context.WithTimeout(c.Request().Context(), obs.HealthChecks.Timeout)
		defer cancel()

		censusStart := time.Now()

		if err := h.server.Census.Ping(ctx); err != nil {
			checks[config.HealthCheckCensus] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": time.Since(censusStart).String(),
				"error":         err.Error(),
			}

			isHealthy = false

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(censusStart)).
				Msg("census health check failed")

			h.recordHealthCheckError(map[string]interface{}{
				"check_type":       config.HealthCheckCensus,
				"operation":        "health_check",
				"error_type":       "census_unhealthy",
				"response_time_ms": time.Since(censusStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks[config.HealthCheckCensus] = map[string]interface{}{
				"status":        "healthy",
				"response_time": time.Since(censusStart).String(),
			}

			logger.Info().
				Dur("response_time", time.Since(censusStart)).
				Msg("census health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) recordHealthCheckError(attrs map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
