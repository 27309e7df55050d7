package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "anthropic", cfg.Backend)
	assert.Equal(t, 1, cfg.MaxConcurrentCalls)
	assert.Equal(t, 30, cfg.CallsPerMinute)
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, "remedy_knowledge.json", cfg.KnowledgePath)
	assert.Equal(t, 0.70, cfg.TrustThreshold)
	assert.Equal(t, 24, cfg.WindowHours)
	assert.Equal(t, 5, cfg.LogRepairCap)
	assert.Equal(t, 50, cfg.LongFunctionLines)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remedy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: ollama
endpoint: http://localhost:11434
trust_threshold: 0.85
log_repair_cap: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Backend)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
	assert.Equal(t, 0.85, cfg.TrustThreshold)
	assert.Equal(t, 3, cfg.LogRepairCap)

	// untouched fields keep their defaults
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, 24, cfg.WindowHours)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("REMEDY_TEST_KEY", "sk-from-env")
	t.Setenv("REMEDY_TEST_ROOT", "/srv/app")

	path := filepath.Join(t.TempDir(), "remedy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: ${REMEDY_TEST_KEY}
root: ${REMEDY_TEST_ROOT}/src
debug_log: ${REMEDY_TEST_UNSET}/debug.log
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.APIKey)
	assert.Equal(t, "/srv/app/src", cfg.Root)
	assert.Equal(t, "/debug.log", cfg.DebugLog)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remedy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
