package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs each test away from any config.yaml in the working tree.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.Loglevel)
	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, "0", cfg.Timeout)
	assert.Equal(t, "http://localhost:11434/api", cfg.Ollama.Endpoint)
	assert.Equal(t, "llama3.2:1b", cfg.Ollama.Model)
}

func TestLoadConfig_Env(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "8080")
	t.Setenv("OLLAMA_MODEL", "llama3.2:3b")
	t.Setenv("OLLAMA_API_ENDPOINT", "http://gpu-box:11434/api")
	t.Setenv("TIMEOUT", "90s")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "llama3.2:3b", cfg.Ollama.Model)
	assert.Equal(t, "http://gpu-box:11434/api", cfg.Ollama.Endpoint)
	assert.Equal(t, "90s", cfg.Timeout)
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
log_level: debug
ollama:
  endpoint: http://ollama.internal:11434/api
  model: qwen2.5:0.5b
`), 0o600))

	cfg, err := loadConfig([]string{"--config", path, "--port", "5000"})
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "debug", cfg.Loglevel)
	assert.Equal(t, "http://ollama.internal:11434/api", cfg.Ollama.Endpoint)
	assert.Equal(t, "qwen2.5:0.5b", cfg.Ollama.Model)
}

func TestLoadConfig_DefaultFileInWorkingDir(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("host: 127.0.0.1\n"), 0o600))

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "3000", cfg.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := inTempDir(t)

	_, err := loadConfig([]string{"--config", filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	_, err = loadConfig([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestGetBackend(t *testing.T) {
	be, err := getBackend(config{Timeout: "0"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", be.Name())

	_, err = getBackend(config{Timeout: "whenever"})
	assert.Error(t, err)
}
