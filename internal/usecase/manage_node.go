package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// ManageNode handles the lifecycle of the local development node
type ManageNode struct {
	config   *config.RuntimeConfig
	nodes    NodeManager
	progress ProgressSink
}

// NewManageNode creates a new node management use case
func NewManageNode(cfg *config.RuntimeConfig, nodes NodeManager, progress ProgressSink) *ManageNode {
	return &ManageNode{
		config:   cfg,
		nodes:    nodes,
		progress: progress,
	}
}

// ManageNodeParams contains parameters for node operations. Empty fields
// fall back to the configured node.
type ManageNodeParams struct {
	Operation string // start, stop, restart, status, logs
	Name      string
	Port      string
	ChainID   string
	ForkURL   string

	// LogWriter receives the node output for the logs operation
	LogWriter io.Writer
}

// ManageNodeResult contains the result of node operations
type ManageNodeResult struct {
	Operation string                `json:"operation"`
	Instance  *domain.AnvilInstance `json:"instance"`
	Status    *domain.AnvilStatus   `json:"status,omitempty"`
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
}

// Execute performs the node management operation
func (m *ManageNode) Execute(ctx context.Context, params ManageNodeParams) (*ManageNodeResult, error) {
	instance := m.instance(params)

	switch params.Operation {
	case "start":
		return m.start(ctx, instance)
	case "stop":
		return m.stop(ctx, instance)
	case "restart":
		return m.restart(ctx, instance)
	case "status":
		return m.status(ctx, instance)
	case "logs":
		return m.logs(ctx, instance, params.LogWriter)
	default:
		return nil, fmt.Errorf("unknown operation: %s", params.Operation)
	}
}

func (m *ManageNode) instance(params ManageNodeParams) *domain.AnvilInstance {
	node := m.config.Node
	instance := &domain.AnvilInstance{
		Name:    params.Name,
		Port:    params.Port,
		ChainID: params.ChainID,
		ForkURL: params.ForkURL,
	}
	if instance.Name == "" {
		instance.Name = node.Name
	}
	if instance.Port == "" {
		instance.Port = node.Port
	}
	if instance.ChainID == "" {
		instance.ChainID = node.ChainID
	}
	return instance
}

func (m *ManageNode) start(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	m.progress.Info(fmt.Sprintf("Starting local node '%s' on port %s...", instance.Name, instance.Port))

	status, err := m.nodes.GetStatus(ctx, instance)
	if err == nil && status.Running {
		return nil, fmt.Errorf("node '%s' is already running (PID %d)", instance.Name, status.PID)
	}

	if err := m.nodes.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}

	status, err = m.nodes.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}

	return &ManageNodeResult{
		Operation: "start",
		Instance:  instance,
		Status:    status,
		Success:   true,
		Message:   fmt.Sprintf("Node '%s' started with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageNode) stop(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	m.progress.Info(fmt.Sprintf("Stopping node '%s'...", instance.Name))

	status, err := m.nodes.GetStatus(ctx, instance)
	if err != nil || !status.Running {
		return &ManageNodeResult{
			Operation: "stop",
			Instance:  instance,
			Success:   true,
			Message:   fmt.Sprintf("Node '%s' is not running", instance.Name),
		}, nil
	}

	if err := m.nodes.Stop(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to stop node: %w", err)
	}

	return &ManageNodeResult{
		Operation: "stop",
		Instance:  instance,
		Success:   true,
		Message:   fmt.Sprintf("Node '%s' stopped", instance.Name),
	}, nil
}

func (m *ManageNode) restart(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	m.progress.Info(fmt.Sprintf("Restarting node '%s'...", instance.Name))

	status, err := m.nodes.GetStatus(ctx, instance)
	if err == nil && status.Running {
		if err := m.nodes.Stop(ctx, instance); err != nil {
			return nil, fmt.Errorf("failed to stop node: %w", err)
		}
	}

	if err := m.nodes.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start node: %w", err)
	}

	status, err = m.nodes.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after restart: %w", err)
	}

	return &ManageNodeResult{
		Operation: "restart",
		Instance:  instance,
		Status:    status,
		Success:   true,
		Message:   fmt.Sprintf("Node '%s' restarted with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageNode) status(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	status, err := m.nodes.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &ManageNodeResult{
		Operation: "status",
		Instance:  instance,
		Status:    status,
		Success:   true,
	}, nil
}

// logs follows the node log until ctx is cancelled
func (m *ManageNode) logs(ctx context.Context, instance *domain.AnvilInstance, w io.Writer) (*ManageNodeResult, error) {
	if w == nil {
		return nil, fmt.Errorf("no log writer given")
	}
	status, err := m.nodes.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	if err := m.nodes.StreamLogs(ctx, instance, w); err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("failed to stream logs: %w", err)
	}

	return &ManageNodeResult{
		Operation: "logs",
		Instance:  instance,
		Status:    status,
		Success:   true,
	}, nil
}
