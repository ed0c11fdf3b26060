package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAIModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.GroqModel)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.Equal(t, 10, cfg.Browser.MaxIterations)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10000, cfg.Validation.MaxLength)
	assert.True(t, cfg.Validation.CheckInjection)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
llm:
  provider: groq
  temperature: 0.7
browser:
  engine: firefox
  headless: false
  allowed_hosts:
    - "*.example.com"
server:
  port: 9000
`))
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model())
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, "firefox", cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"*.example.com"}, cfg.Browser.AllowedHosts)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"temperature out of range", "llm:\n  temperature: 2.5\n"},
		{"unknown provider", "llm:\n  provider: ollama\n"},
		{"unknown engine", "browser:\n  engine: safari\n"},
		{"zero iterations", "browser:\n  max_iterations: 0\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad driver", "database:\n  driver: postgres\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err), "expected ConfigurationError, got %v", err)
		})
	}
}

func TestModelFollowsProvider(t *testing.T) {
	llm := LLMConfig{Provider: "openai", OpenAIModel: "gpt-4o", GroqModel: "llama-3.3-70b-versatile"}
	assert.Equal(t, "gpt-4o", llm.Model())

	llm.Provider = "groq"
	assert.Equal(t, "llama-3.3-70b-versatile", llm.Model())
}
