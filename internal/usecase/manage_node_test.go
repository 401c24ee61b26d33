package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/adapters/progress"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

func newManageNode(nodes usecase.NodeManager) *usecase.ManageNode {
	cfg := &config.RuntimeConfig{Node: config.NodeConfig{Name: "anvil", Port: "8545", ChainID: "31337"}}
	return usecase.NewManageNode(cfg, nodes, progress.NewNopSink())
}

func instanceMatching(name, port string) any {
	return mock.MatchedBy(func(i *domain.AnvilInstance) bool {
		return i.Name == name && i.Port == port
	})
}

func TestManageNode(t *testing.T) {
	ctx := context.Background()
	running := &domain.AnvilStatus{Running: true, PID: 4242, RPCURL: "http://127.0.0.1:8545", RPCHealthy: true}
	stopped := &domain.AnvilStatus{Running: false}

	t.Run("start uses configured defaults", func(t *testing.T) {
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, instanceMatching("anvil", "8545")).Return(stopped, nil).Once()
		nodes.On("Start", mock.Anything, mock.MatchedBy(func(i *domain.AnvilInstance) bool {
			return i.ChainID == "31337"
		})).Return(nil)
		nodes.On("GetStatus", mock.Anything, instanceMatching("anvil", "8545")).Return(running, nil).Once()

		result, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "start"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Node 'anvil' started with PID 4242", result.Message)
		nodes.AssertExpectations(t)
	})

	t.Run("start refuses a running node", func(t *testing.T) {
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, mock.Anything).Return(running, nil)

		_, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "start"})
		assert.ErrorContains(t, err, "already running")
		nodes.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("stop when not running", func(t *testing.T) {
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, instanceMatching("dev", "9545")).Return(stopped, nil)

		result, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "stop", Name: "dev", Port: "9545"})
		require.NoError(t, err)
		assert.Equal(t, "Node 'dev' is not running", result.Message)
		nodes.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
	})

	t.Run("restart", func(t *testing.T) {
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, mock.Anything).Return(running, nil)
		nodes.On("Stop", mock.Anything, mock.Anything).Return(nil)
		nodes.On("Start", mock.Anything, mock.Anything).Return(nil)

		result, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "restart"})
		require.NoError(t, err)
		assert.Equal(t, "restart", result.Operation)
		nodes.AssertExpectations(t)
	})

	t.Run("start failure", func(t *testing.T) {
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, mock.Anything).Return(stopped, nil)
		nodes.On("Start", mock.Anything, mock.Anything).Return(errors.New("anvil not found in PATH"))

		_, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "start"})
		assert.ErrorContains(t, err, "failed to start node: anvil not found in PATH")
	})

	t.Run("logs", func(t *testing.T) {
		var buf bytes.Buffer
		nodes := &MockNodeManager{}
		nodes.On("GetStatus", mock.Anything, mock.Anything).Return(running, nil)
		nodes.On("StreamLogs", mock.Anything, mock.Anything, &buf).Return(nil)

		result, err := newManageNode(nodes).Execute(ctx, usecase.ManageNodeParams{Operation: "logs", LogWriter: &buf})
		require.NoError(t, err)
		assert.Equal(t, running, result.Status)
		nodes.AssertExpectations(t)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := newManageNode(&MockNodeManager{}).Execute(ctx, usecase.ManageNodeParams{Operation: "explode"})
		assert.ErrorContains(t, err, "unknown operation")
	})
}
