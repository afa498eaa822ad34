package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hometag/housing-api/internal/config"
	"github.com/hometag/housing-api/internal/lib/census"
	"github.com/hometag/housing-api/internal/middleware"
	"github.com/hometag/housing-api/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	apiKeyValid   = "✅ Valid"
	apiKeyInvalid = "❌ Invalid/Demo"
)

// RootResponse is the banner returned by GET /.
type RootResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	APIKeyStatus string `json:"api_key_status"`
	Note         string `json:"note"`
}

// APIKeyTestResponse is returned by GET /test-api-key/.
type APIKeyTestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SystemHandler serves the banner and the API key diagnostic.
type SystemHandler struct {
	Handler
}

func NewSystemHandler(s *server.Server) *SystemHandler {
	return &SystemHandler{
		Handler: NewHandler(s),
	}
}

// Root reports that the service is running and whether a usable Census
// key is configured. It never calls upstream.
func (h *SystemHandler) Root(c echo.Context) error {
	resp := RootResponse{
		Message:      "HomeTag Housing Data API",
		Status:       "running",
		APIKeyStatus: apiKeyValid,
		Note:         "Get a real Census API key from " + config.APIKeySignupURL,
	}

	if h.server.Config.Census.HasPlaceholderKey() {
		resp.APIKeyStatus = apiKeyInvalid
	}

	return c.JSON(http.StatusOK, resp)
}

// TestAPIKey makes one small Census request with the configured key. A
// placeholder key is reported without calling upstream. The status code is
// 200 either way; the outcome is in the body.
func (h *SystemHandler) TestAPIKey(c echo.Context) error {
	if h.server.Config.Census.HasPlaceholderKey() {
		return c.JSON(http.StatusOK, APIKeyTestResponse{
			Status:  "error",
			Message: "Invalid API key. Please get a real key from " + config.APIKeySignupURL,
		})
	}

	logger := middleware.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Census.Timeout)
	defer cancel()

	if err := h.server.Census.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("census API key test failed")
		return c.JSON(http.StatusOK, APIKeyTestResponse{
			Status:  "error",
			Message: apiKeyTestFailure(err),
		})
	}

	return c.JSON(http.StatusOK, APIKeyTestResponse{
		Status:  "success",
		Message: "API key is working correctly",
	})
}

func apiKeyTestFailure(err error) string {
	var rejected *census.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Sprintf("API returned status %d: %s", rejected.StatusCode, rejected.Body)
	}
	return fmt.Sprintf("API test failed: %v", err)
}
