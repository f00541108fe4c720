package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/dhvanilabs/sadhana/pkg/session"
)

// Server is the HTTP front for the session manager.
type Server struct {
	config  Config
	manager *session.Manager
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server. The manager is injected so it can be
// shared with other entry points.
func NewServer(config Config, manager *session.Manager, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		manager: manager,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/sessions", s.handleStartSession)
	v1.Get("/sessions/:id/summary", s.handleSummary)
	v1.Post("/sessions/:id/acknowledge", s.handleAcknowledge)
	v1.Post("/sessions/:id/evaluate", s.handleEvaluate)
	v1.Post("/sessions/:id/voice-windows", s.handleVoiceWindow)
	v1.Post("/sessions/:id/signals", s.handlePartnerSignal)
	v1.Post("/sessions/:id/adaptations", s.handleAdapt)
	v1.Post("/sessions/:id/end", s.handleEnd)
	v1.Get("/owners/:id/progress", s.handleProgress)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
