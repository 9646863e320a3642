package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/folio/internal/cli/config"
	"github.com/leapstack-labs/folio/internal/cli/output"
	"github.com/leapstack-labs/folio/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "init", "serve", "modules", "validate", "preview", "seed", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "catalog", "store", "url", "log-level", "log-file", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_Version(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "folio v"+Version)
}

func TestRoot_CatalogFlag(t *testing.T) {
	path := testutil.SetupTestCatalog(t)

	out, _, err := run(t, "modules", "--catalog", path, "-o", "json")
	require.NoError(t, err)

	var got output.ModulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Modules, 4)
	assert.Equal(t, path, got.Source)
}

func TestRoot_ConfigFile(t *testing.T) {
	path := testutil.SetupTestCatalog(t)
	cfgPath := filepath.Join(filepath.Dir(path), "folio.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\ncatalog:\n  path: catalog.json\n"), 0o600))

	out, _, err := run(t, "--config", cfgPath, "modules")
	require.NoError(t, err)

	var got output.ModulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.Source, "relative paths resolve against the config directory")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, _, err := run(t, "modules", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestRoot_LogFile(t *testing.T) {
	path := testutil.SetupTestCatalog(t)
	logPath := filepath.Join(t.TempDir(), "folio.log")
	cfgPath := filepath.Join(filepath.Dir(path), "folio.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("catalog:\n  path: catalog.json\n"), 0o600))

	_, _, err := run(t, "--config", cfgPath, "--log-file", logPath, "-v", "-o", "json", "modules")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "using config file")
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "folio")
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
