package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "groq", cfg.Model.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model.Default)
	assert.Equal(t, "", cfg.Model.Endpoint)
	assert.Equal(t, 0.5, cfg.Model.Temperature)
	assert.Equal(t, 1024, cfg.Model.MaxTokens)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing provider",
			mutate:  func(c *Config) { c.Model.Provider = "" },
			wantErr: "model.provider is required",
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Model.Default = "" },
			wantErr: "model.default is required",
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Model.Temperature = 1.5 },
			wantErr: "model.temperature must be between 0 and 1",
		},
		{
			name:    "temperature negative",
			mutate:  func(c *Config) { c.Model.Temperature = -0.1 },
			wantErr: "model.temperature must be between 0 and 1",
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Model.MaxTokens = 0 },
			wantErr: "model.max_tokens must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Model: ModelConfig{
			Default:     "llama3-8b-8192",
			Temperature: 0.9,
			Timeout:     time.Minute,
		},
	})

	assert.Equal(t, "llama3-8b-8192", base.Model.Default)
	assert.Equal(t, 0.9, base.Model.Temperature)
	assert.Equal(t, time.Minute, base.Model.Timeout)
	// Untouched fields keep their defaults
	assert.Equal(t, "groq", base.Model.Provider)
	assert.Equal(t, 1024, base.Model.MaxTokens)

	// Nil merge is a no-op
	before := *base
	base.Merge(nil)
	assert.Equal(t, before, *base)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grompt.yaml")
	data := `model:
  provider: ollama
  default: qwen2.5:7b
  endpoint: http://localhost:11434/v1
  temperature: 0.3
server:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "qwen2.5:7b", cfg.Model.Default)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Model.Endpoint)
	assert.Equal(t, 0.3, cfg.Model.Temperature)
	// Unset fields keep defaults
	assert.Equal(t, 1024, cfg.Model.MaxTokens)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfig_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Default = "llama3-70b-8192"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3-70b-8192", loaded.Model.Default)
}

func TestLoader_EnvOverrides(t *testing.T) {
	// Isolate from any real user/project config
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	t.Setenv(EnvDefaultModel, "llama3-8b-8192")
	t.Setenv(EnvDefaultTemperature, "0.8")
	t.Setenv(EnvDefaultMaxTokens, "512")

	cfg, err := NewLoader(nil).Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3-8b-8192", cfg.Model.Default)
	assert.Equal(t, 0.8, cfg.Model.Temperature)
	assert.Equal(t, 512, cfg.Model.MaxTokens)
}

func TestLoader_InvalidEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	t.Setenv(EnvDefaultTemperature, "hot")

	_, err := NewLoader(nil).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDefaultTemperature)
}

func TestLoader_ProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	data := "model:\n  default: project-model\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(data), 0644))

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	chdir(t, sub)

	cfg, err := NewLoader(nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "project-model", cfg.Model.Default,
		"project config found in parent directory")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
