package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "hunyuan", cfg.LLM.Default)
	assert.False(t, cfg.LLM.Strict)
	assert.Equal(t, "sqlite", cfg.Vector.Driver)
	assert.Equal(t, 1000, cfg.Memory.TokenBudget)
	assert.Equal(t, "summarize", cfg.Memory.Policy)
	assert.Equal(t, 10, cfg.Retrieval.ComplexityThreshold)
	assert.Equal(t, 2, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.FetchK)
	assert.InDelta(t, 0.5, cfg.Retrieval.LambdaMult, 1e-9)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9000
llm:
  default: llama
  strict: true
memory:
  token_budget: 2000
  policy: truncate
vector:
  driver: memory
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "llama", cfg.LLM.Default)
	assert.True(t, cfg.LLM.Strict)
	assert.Equal(t, 2000, cfg.Memory.TokenBudget)
	assert.Equal(t, "truncate", cfg.Memory.Policy)
	// 未覆盖的字段保持默认。
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9000\n"), 0o644))

	t.Setenv("RAGSERVE_SERVER_HTTP_PORT", "7070")
	t.Setenv("RAGSERVE_LLM_HUNYUAN_API_KEY", "sk-from-env")
	t.Setenv("RAGSERVE_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("RAGSERVE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RAGSERVE_LLM_STRICT", "true")
	t.Setenv("RAGSERVE_RETRIEVAL_LAMBDA_MULT", "0.7")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "sk-from-env", cfg.LLM.Hunyuan.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.LLM.Strict)
	assert.InDelta(t, 0.7, cfg.Retrieval.LambdaMult, 1e-9)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vector.Driver = "mongodb"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Memory.Policy = "forget_everything"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retrieval.LambdaMult = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.HTTPPort = 0
	assert.Error(t, cfg.Validate())
}

func TestFactoryConfig_Mapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Default = "llama"
	cfg.LLM.Hunyuan.APIKey = "injected"
	cfg.LLM.OpenAIOrganization = "org-123"

	fc := cfg.LLM.FactoryConfig()
	assert.Equal(t, "llama", fc.Default)
	assert.Equal(t, "injected", fc.Hunyuan.APIKey)
	assert.Equal(t, "org-123", fc.OpenAI.Organization)
}
