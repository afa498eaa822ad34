package router

import (
	"net/http"

	"github.com/hometag/housing-api/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerHousingRoutes(r *echo.Echo, h *handler.Handlers) {
	api := r.Group("/api")

	getHousingData := handler.Handle(h.Housing.Handler, h.Housing.GetHousingData, http.StatusOK)

	// Clients have used both spellings.
	api.GET("/housing-data/", getHousingData)
	api.GET("/housing-data", getHousingData)
}
