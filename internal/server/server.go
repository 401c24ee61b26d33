package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ScenarioRunner runs scenarios
type ScenarioRunner interface {
	Execute(ctx context.Context, params usecase.RunScenarioParams) (*usecase.RunScenarioResult, error)
}

// ScenarioParser parses scenarios without running them
type ScenarioParser interface {
	Execute(ctx context.Context, params usecase.ParseScenarioParams) (*usecase.ParseScenarioResult, error)
}

// ScenarioLister lists stored scenarios
type ScenarioLister interface {
	Execute(ctx context.Context) (*usecase.ListScenariosResult, error)
}

// Server exposes scenario parsing and execution over HTTP
type Server struct {
	app     *fiber.App
	runner  ScenarioRunner
	parser  ScenarioParser
	lister  ScenarioLister
	log     *slog.Logger
	version string
}

// New creates a server with all routes registered
func New(runner ScenarioRunner, parser ScenarioParser, lister ScenarioLister, log *slog.Logger, version string) *Server {
	s := &Server{
		runner:  runner,
		parser:  parser,
		lister:  lister,
		log:     log.With("component", "Server"),
		version: version,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "catapult",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.log.Debug("request", "method", c.Method(), "path", c.Path(), "duration", time.Since(start))
		return err
	})

	s.app.Get("/health", s.health)

	v1 := s.app.Group("/v1")
	v1.Get("/scenarios", s.listScenarios)
	v1.Post("/scenarios/parse", s.parseScenario)
	v1.Post("/scenarios/run", s.runScenario)

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleError maps domain errors onto HTTP status codes
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	var parseErr *domain.ParseError
	var exprErr *domain.ExpectationSyntaxError
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.As(err, &parseErr), errors.As(err, &exprErr):
		code = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrScenarioNotFound):
		code = fiber.StatusNotFound
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
