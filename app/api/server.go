package api

import (
	"context"
	"log/slog"
	"time"

	"scamtrap/app/config"
	"scamtrap/app/service/honeypot"
	"scamtrap/app/service/store"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Paths reachable without an API key.
var openPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

type Server struct {
	cfg           *config.Config
	honeypotSvc   *honeypot.Service
	conversations *store.Facade

	app      *fiber.App
	validate *validator.Validate
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:           do.MustInvoke[*config.Config](di),
		honeypotSvc:   do.MustInvoke[*honeypot.Service](di),
		conversations: do.MustInvoke[*store.Facade](di),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(s.apiKeyMiddleware)
	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Post("/honeypot/message", s.handleMessage)

	s.app = app

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	slog.Info("HTTP server listening", "addr", s.cfg.Server.Listen)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.app.Listen(s.cfg.Server.Listen)
	})

	g.Go(func() error {
		<-ctx.Done()
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}

func (s *Server) apiKeyMiddleware(c *fiber.Ctx) error {
	if openPaths[c.Path()] {
		return c.Next()
	}

	if len(s.cfg.Server.APIKeys) == 0 {
		slog.Warn("No API keys configured, allowing all requests")
		return c.Next()
	}

	key := c.Get("x-api-key")
	if key == "" {
		slog.Warn("Missing API key", "path", c.Path())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"detail": "Missing API key. Provide x-api-key header.",
		})
	}

	if !pie.Contains(s.cfg.Server.APIKeys, key) {
		slog.Warn("Invalid API key attempt", "path", c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "Invalid API key",
		})
	}

	return c.Next()
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "scamtrap",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.conversations.HealthCheck(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"store":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req honeypot.Request

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "invalid request body",
		})
	}

	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}

	response, err := s.honeypotSvc.ProcessMessage(c.UserContext(), req)
	if err != nil {
		slog.Error("Failed to process message",
			"conversation_id", req.ConversationID,
			"error", err,
			"telegram", true)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "internal server error",
		})
	}

	return c.JSON(response)
}
