package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func newTestViper(t *testing.T, projectRoot string) *viper.Viper {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("rpc-url", "", "")
	cmd.Flags().String("network", "", "")
	return SetupViper(projectRoot, cmd)
}

func TestProvider(t *testing.T) {
	t.Run("defaults outside a foundry project", func(t *testing.T) {
		root := t.TempDir()
		v := newTestViper(t, root)

		cfg, err := Provider(v)
		require.NoError(t, err)

		assert.Equal(t, root, cfg.ProjectRoot)
		assert.Equal(t, filepath.Join(root, ".catapult"), cfg.DataDir)
		assert.Equal(t, filepath.Join(root, "scenarios"), cfg.ScenariosDir)
		assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
		assert.Equal(t, domain.DeployAddressPlaceholder, cfg.DeployAddressPolicy)
		assert.Equal(t, 30*time.Second, cfg.RPCTimeout)
		assert.True(t, cfg.Node.AutoStart)
		assert.Equal(t, "8545", cfg.Node.Port)
		assert.Nil(t, cfg.Network)
	})

	t.Run("rejects unknown deploy address policy", func(t *testing.T) {
		v := newTestViper(t, t.TempDir())
		v.Set("deploy_address_policy", "guess")

		_, err := Provider(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deploy_address_policy")
	})

	t.Run("strict policy is accepted case-insensitively", func(t *testing.T) {
		v := newTestViper(t, t.TempDir())
		v.Set("deploy_address_policy", "STRICT")

		cfg, err := Provider(v)
		require.NoError(t, err)
		assert.Equal(t, domain.DeployAddressStrict, cfg.DeployAddressPolicy)
	})

	t.Run("network resolves rpc url from foundry.toml", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("CATAPULT_TEST_RPC", "http://10.0.0.1:8545")
		foundry := `[rpc_endpoints]
devnet = "${CATAPULT_TEST_RPC}"
local = "http://127.0.0.1:9545"
`
		require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(foundry), 0644))

		v := newTestViper(t, root)
		v.Set("network", "devnet")

		cfg, err := Provider(v)
		require.NoError(t, err)
		require.NotNil(t, cfg.Network)
		assert.Equal(t, "http://10.0.0.1:8545", cfg.RPCURL)
		assert.Equal(t, "CATAPULT_TEST_RPC", cfg.Network.EnvVar)
	})

	t.Run("network with unset env var fails", func(t *testing.T) {
		root := t.TempDir()
		foundry := `[rpc_endpoints]
devnet = "${CATAPULT_UNSET_RPC_FOR_TEST}"
`
		require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(foundry), 0644))

		v := newTestViper(t, root)
		v.Set("network", "devnet")

		_, err := Provider(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CATAPULT_UNSET_RPC_FOR_TEST")
	})

	t.Run("network may be a literal url", func(t *testing.T) {
		v := newTestViper(t, t.TempDir())
		v.Set("network", "http://127.0.0.1:7545")

		cfg, err := Provider(v)
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:7545", cfg.RPCURL)
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(""), 0644))
	nested := filepath.Join(root, "src", "nested")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Chdir(nested)

	got, err := FindProjectRoot()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)
}
