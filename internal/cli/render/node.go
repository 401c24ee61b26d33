package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NodeRenderer renders local node operation results
type NodeRenderer struct {
	out io.Writer
}

// NewNodeRenderer creates a new node renderer
func NewNodeRenderer(out io.Writer) *NodeRenderer {
	return &NodeRenderer{out: out}
}

// Render renders the node operation result
func (r *NodeRenderer) Render(result *usecase.ManageNodeResult) error {
	switch result.Operation {
	case "start", "restart":
		return r.renderStart(result)
	case "stop":
		return r.renderStop(result)
	case "status":
		return r.renderStatus(result)
	case "logs":
		return nil
	default:
		return fmt.Errorf("unknown operation: %s", result.Operation)
	}
}

func (r *NodeRenderer) renderStart(result *usecase.ManageNodeResult) error {
	if !result.Success {
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(result.Message))
	if result.Status != nil {
		fmt.Fprintln(r.out, warnStyle.Sprintf("📋 Logs: %s", getRelativePath(result.Status.LogFile)))
		fmt.Fprintln(r.out, infoStyle.Sprintf("🌐 RPC URL: %s", result.Status.RPCURL))
	}
	return nil
}

func (r *NodeRenderer) renderStop(result *usecase.ManageNodeResult) error {
	if result.Success {
		fmt.Fprintln(r.out, FormatSuccess(result.Message))
	}
	return nil
}

func (r *NodeRenderer) renderStatus(result *usecase.ManageNodeResult) error {
	fmt.Fprintln(r.out, headerStyle.Sprintf("📊 Node Status ('%s'):", result.Instance.Name))

	status := result.Status
	if status.Running {
		fmt.Fprintln(r.out, successStyle.Sprintf("Status: 🟢 Running (PID %d)", status.PID))
		fmt.Fprintln(r.out, infoStyle.Sprintf("RPC URL: %s", status.RPCURL))
		fmt.Fprintln(r.out, warnStyle.Sprintf("Log file: %s", getRelativePath(status.LogFile)))

		if status.RPCHealthy {
			fmt.Fprintln(r.out, successStyle.Sprintf("RPC Health: ✅ Responding (block %d)", status.BlockNumber))
		} else {
			fmt.Fprintln(r.out, failStyle.Sprint("RPC Health: ❌ Not responding"))
		}
	} else {
		fmt.Fprintln(r.out, failStyle.Sprint("Status: 🔴 Not running"))
		fmt.Fprintln(r.out, faintStyle.Sprintf("PID file: %s", getRelativePath(result.Instance.PidFile)))
		fmt.Fprintln(r.out, faintStyle.Sprintf("Log file: %s", getRelativePath(result.Instance.LogFile)))
	}
	if status.Error != "" {
		fmt.Fprintln(r.out, FormatWarning(status.Error))
	}
	return nil
}

// RenderLogsHeader renders the header for logs streaming
func (r *NodeRenderer) RenderLogsHeader(name string) {
	fmt.Fprintln(r.out, headerStyle.Sprintf("📋 Showing node '%s' logs (Ctrl+C to exit):", name))
	fmt.Fprintln(r.out)
}
