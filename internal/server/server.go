// Package server defines the Server struct that composes the app's shared
// dependencies and owns the HTTP server lifecycle.
//
// It owns:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the Census API client
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hometag/housing-api/internal/config"
	"github.com/hometag/housing-api/internal/lib/census"
	"github.com/rs/zerolog"

	loggerPkg "github.com/hometag/housing-api/internal/logger"
)

// Server is the application container. It is not the HTTP server itself;
// it holds what handlers, services and middleware share.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, which may be nil.
	LoggerService *loggerPkg.LoggerService

	// Census is the outbound Census Bureau API client.
	Census *census.Client

	httpServer *http.Server
}

// New constructs a Server and its outbound client.
//
// A placeholder API key does not stop startup: every lookup will come back
// as an error record, so the operator is warned here instead.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("server requires config and logger")
	}

	if cfg.Census.HasPlaceholderKey() {
		logger.Warn().
			Str("signup_url", config.APIKeySignupURL).
			Str("env_var", config.LegacyAPIKeyEnv).
			Msg("using invalid Census API key, set a real key to get data")
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Census:        census.NewClient(cfg, logger),
	}, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server and blocks until it stops. SetupHTTPServer
// must be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Bool("api_key_valid", !s.Config.Census.HasPlaceholderKey()).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires, then flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.LoggerService != nil {
		s.LoggerService.Shutdown()
	}

	return nil
}
