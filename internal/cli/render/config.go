package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{
		out: out,
	}
}

// RenderConfig renders the stored defaults and the effective values
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "❌ No %s file found\n", getRelativePath(result.ConfigPath))
		fmt.Fprintln(r.out, "⚠️  Using defaults, environment variables and flags only")
		fmt.Fprintln(r.out)
	} else {
		fmt.Fprintln(r.out, "📋 Current config:")
	}

	effective := map[domain.ConfigKey]string{
		domain.ConfigKeyNetwork:             result.Network,
		domain.ConfigKeyRPCURL:              result.RPCURL,
		domain.ConfigKeyDeployAddressPolicy: string(result.DeployAddressPolicy),
		domain.ConfigKeyScenariosDir:        getRelativePath(result.ScenariosDir),
	}

	t := newTable()
	t.AppendHeader(table.Row{"Key", "Stored", "Effective"})
	for _, key := range domain.ValidConfigKeys() {
		stored := result.Config.Get(key)
		if stored == "" {
			stored = faintStyle.Sprint("(not set)")
		}
		t.AppendRow(table.Row{string(key), stored, effective[key]})
	}
	fmt.Fprintln(r.out, t.Render())

	if result.Exists {
		fmt.Fprintf(r.out, "\n📁 config file: %s\n", getRelativePath(result.ConfigPath))
	}
	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintf(r.out, "✅ Set %s to: %s\n", result.Key, result.Value)
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	if result.RemovedValue == "" {
		fmt.Fprintf(r.out, "⚠️  %s was not set\n", result.Key)
	} else {
		fmt.Fprintf(r.out, "✅ Removed %s (was %s)\n", result.Key, result.RemovedValue)
	}
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}
