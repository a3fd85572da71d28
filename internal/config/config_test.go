package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polyglot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "polyglot-translate", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.Profiles.Path)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
  request_timeout: 5s
log:
  level: debug
  format: text
translate:
  default_provider: anthropic
`)

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "anthropic", cfg.Translate.DefaultProvider)

	t.Setenv("POLY_SERVER__PORT", "9000")
	t.Setenv("POLY_LOG__LEVEL", "warn")
	cfg, err = Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)

	cfg, err = Load(newFlags(t, "--config", path, "--port", "9100", "--log-format", "json"))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "unset flags do not clobber lower layers")
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(newFlags(t))
	require.NoError(t, err, "missing default file is tolerated")

	_, err = Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("PROFILE_DIR", "/etc/polyglot")
	path := writeConfig(t, `
profiles:
  path: ${PROFILE_DIR}/profiles.yaml
`)

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "/etc/polyglot/profiles.yaml", cfg.Profiles.Path)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")
	assert.Equal(t, "test-value", substituteEnvVars("${TEST_VAR}"))
	assert.Equal(t, "prefix-test-value-suffix", substituteEnvVars("prefix-${TEST_VAR}-suffix"))
	assert.Equal(t, "", substituteEnvVars("${NONEXISTENT_VAR_12345}"))
	assert.Equal(t, "no vars here", substituteEnvVars("no vars here"))
}
