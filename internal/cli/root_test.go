package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/adapters/progress"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// executeIn runs the root command with cwd set to dir
func executeIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Chdir(dir)
	for _, key := range []string{"CATAPULT_RPC_URL", "CATAPULT_NETWORK", "CATAPULT_DEPLOY_ADDRESS_POLICY", "CATAPULT_SCENARIOS_DIR"} {
		t.Setenv(key, "")
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--non-interactive"))
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]string{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = cmd.GroupID
	}

	for _, name := range []string{"run", "parse", "list", "template", "save"} {
		assert.Equal(t, "main", names[name], name)
	}
	for _, name := range []string{"node", "config", "init", "serve"} {
		assert.Equal(t, "management", names[name], name)
	}
	assert.Contains(t, names, "version")

	for _, flag := range []string{"debug", "non-interactive", "json", "network", "rpc-url"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestNeedsApp(t *testing.T) {
	root := NewRootCmd()
	find := func(args ...string) *cobra.Command {
		cmd, _, err := root.Find(args)
		require.NoError(t, err)
		return cmd
	}

	assert.False(t, needsApp(find("version")))
	assert.False(t, needsApp(find("node")), "group commands only print help")
	assert.True(t, needsApp(find("node", "status")))
	assert.True(t, needsApp(find("run")))
	assert.True(t, needsApp(find("config")))
}

func TestNewProgressSink(t *testing.T) {
	assert.IsType(t, progress.NewNopSink(), newProgressSink(true, false))
	assert.IsType(t, progress.NewNopSink(), newProgressSink(false, true))
	assert.IsType(t, &progress.SpinnerProgressReporter{}, newProgressSink(false, false))
}

func TestVersionCmd(t *testing.T) {
	out, err := executeIn(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "catapult version dev")
}

func TestResolveScenarioSource(t *testing.T) {
	t.Run("inline yaml wins", func(t *testing.T) {
		var path, text string
		err := resolveScenarioSource(&cobra.Command{}, []string{"ignored"}, "name: x", &path, &text)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, "name: x", text)
	})

	t.Run("stdin", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("name: from-stdin\n"))

		var path, text string
		require.NoError(t, resolveScenarioSource(cmd, []string{"-"}, "", &path, &text))
		assert.Empty(t, path)
		assert.Equal(t, "name: from-stdin\n", text)
	})

	t.Run("path or name", func(t *testing.T) {
		var path, text string
		require.NoError(t, resolveScenarioSource(&cobra.Command{}, []string{"counter"}, "", &path, &text))
		assert.Equal(t, "counter", path)
		assert.Empty(t, text)
	})
}

func TestInitParseAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := executeIn(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created scenarios/example.yaml")
	assert.FileExists(t, filepath.Join(dir, "scenarios", "example.yaml"))
	assert.FileExists(t, filepath.Join(dir, ".env.example"))
	assert.DirExists(t, filepath.Join(dir, ".catapult"))

	out, err = executeIn(t, dir, "parse", "example")
	require.NoError(t, err)
	assert.Contains(t, out, "example")
	assert.Contains(t, out, "Parsed 8 step(s)")

	out, err = executeIn(t, dir, "list", "--json")
	require.NoError(t, err)
	var summaries []usecase.ScenarioSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries), out)
	require.Len(t, summaries, 1)
	assert.Equal(t, "example", summaries[0].Name)
	assert.Equal(t, 8, summaries[0].Steps)
}

func TestParseInlineReportsDiagnostics(t *testing.T) {
	out, err := executeIn(t, t.TempDir(), "parse", "--json", "--yaml", "name: loose\nsteps:\n  - mine_blocks: 2\n")
	require.NoError(t, err)

	var parsed struct {
		Definition struct {
			Steps []struct {
				Kind  string `json:"kind"`
				Token string `json:"token"`
			} `json:"steps"`
		} `json:"definition"`
		Diagnostics []struct {
			Message string `json:"message"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed), out)
	require.Len(t, parsed.Definition.Steps, 1)
	assert.Equal(t, "mine", parsed.Definition.Steps[0].Kind)
	assert.Equal(t, "mine_blocks", parsed.Definition.Steps[0].Token)
	assert.NotEmpty(t, parsed.Diagnostics)
}

func TestConfigSetShowRemove(t *testing.T) {
	dir := t.TempDir()

	out, err := executeIn(t, dir, "config", "set", "policy", "strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Set deploy_address_policy to: strict")

	data, err := os.ReadFile(filepath.Join(dir, ".catapult", "config.local.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deploy_address_policy": "strict"`)

	// the stored value now flows through viper
	out, err = executeIn(t, dir, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "deploy_address_policy")
	assert.Contains(t, out, "strict")

	out, err = executeIn(t, dir, "config", "remove", "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed deploy_address_policy (was strict)")

	_, err = executeIn(t, dir, "config", "set", "colour", "blue")
	assert.ErrorContains(t, err, "unknown config key: colour")
}
