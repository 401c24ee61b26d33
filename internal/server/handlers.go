package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

type healthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Now     int64  `json:"now"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(healthResponse{
		OK:      true,
		Version: s.version,
		Now:     time.Now().Unix(),
	})
}

// ScenarioRequest names a stored scenario or carries it inline
type ScenarioRequest struct {
	Path string `json:"path"`
	YAML string `json:"yaml"`
}

// RunRequest selects a scenario and per-run overrides
type RunRequest struct {
	ScenarioRequest
	RPCURL              string `json:"rpcUrl"`
	DeployAddressPolicy string `json:"deployAddressPolicy"`
	Trace               bool   `json:"trace"`
}

// RunResponse wraps an execution result
type RunResponse struct {
	*domain.ExecutionResult
	RPCURL    string `json:"rpcUrl"`
	TracePath string `json:"tracePath,omitempty"`
}

// ListResponse lists the stored scenarios
type ListResponse struct {
	Scenarios []usecase.ScenarioSummary `json:"scenarios"`
}

func (s *Server) listScenarios(c *fiber.Ctx) error {
	result, err := s.lister.Execute(c.UserContext())
	if err != nil {
		return err
	}
	scenarios := result.Scenarios
	if scenarios == nil {
		scenarios = []usecase.ScenarioSummary{}
	}
	return c.JSON(ListResponse{Scenarios: scenarios})
}

func (s *Server) parseScenario(c *fiber.Ctx) error {
	var req ScenarioRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Path == "" && strings.TrimSpace(req.YAML) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "one of path or yaml is required")
	}

	result, err := s.parser.Execute(c.UserContext(), usecase.ParseScenarioParams{
		Path: req.Path,
		YAML: req.YAML,
	})
	if err != nil {
		return err
	}
	return c.JSON(result.Parsed)
}

func (s *Server) runScenario(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Path == "" && strings.TrimSpace(req.YAML) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "one of path or yaml is required")
	}

	policy := domain.DeployAddressPolicy(strings.ToLower(req.DeployAddressPolicy))
	if policy != "" && !policy.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid deployAddressPolicy: "+req.DeployAddressPolicy)
	}

	result, err := s.runner.Execute(c.UserContext(), usecase.RunScenarioParams{
		Path:                req.Path,
		YAML:                req.YAML,
		RPCURL:              req.RPCURL,
		DeployAddressPolicy: policy,
		WriteTrace:          req.Trace,
	})
	if err != nil {
		return err
	}

	s.log.Info("scenario run", "scenario", result.Result.ScenarioName, "run", result.Result.RunID, "success", result.Result.Success)
	return c.JSON(RunResponse{
		ExecutionResult: result.Result,
		RPCURL:          result.RPCURL,
		TracePath:       result.TracePath,
	})
}
