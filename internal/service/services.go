package service

import (
	"github.com/hometag/housing-api/internal/server"
)

// Services is a container for all business services, built once at startup
// and handed to the handler layer.
type Services struct {
	Housing *HousingService
}

// NewServices wires every service to the shared dependencies held by s.
func NewServices(s *server.Server) *Services {
	return &Services{
		Housing: NewHousingService(s.Census, s.Logger, s.Config.Census.Concurrency),
	}
}
