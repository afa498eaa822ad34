package handler

import (
	"github.com/hometag/housing-api/internal/server"
	"github.com/hometag/housing-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one object.
type Handlers struct {
	Health  *HealthHandler  // GET /status
	OpenAPI *OpenAPIHandler // GET /docs
	System  *SystemHandler  // GET / and GET /test-api-key/
	Housing *HousingHandler // GET /api/housing-data/
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		System:  NewSystemHandler(s),
		Housing: NewHousingHandler(s, services.Housing),
	}
}
