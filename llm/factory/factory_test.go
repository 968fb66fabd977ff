package factory

import (
	"testing"

	"github.com/BaSui01/ragserve/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_KnownBackends(t *testing.T) {
	r, err := NewResolver(Config{Default: "hunyuan"}, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name      string
		wantKind  string
		wantModel string
	}{
		{"llama", "ollama", "llama3.2:1b"},
		{"qwen", "ollama", "qwen2.5:1.5b"},
		{"deepseek", "ollama", "deepseek-r1:1.5b"},
		{"gemini", "ollama", "gemma3:1b"},
		{"hunyuan", "hunyuan", "hunyuan-lite"},
		{"openai", "openai", "gpt-3.5-turbo"},
	}
	for _, tt := range tests {
		b, err := r.Resolve(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.name, b.Name)
		assert.Equal(t, tt.wantKind, b.Provider.Name())
		assert.Equal(t, tt.wantModel, b.Model)
	}
}

func TestResolver_UnknownFallsBackToDefault(t *testing.T) {
	r, err := NewResolver(Config{Default: "hunyuan"}, zap.NewNop())
	require.NoError(t, err)

	b, err := r.Resolve("no-such-model")
	require.NoError(t, err)
	assert.Equal(t, "hunyuan", b.Name)
	assert.Equal(t, "hunyuan-lite", b.Model)
}

func TestResolver_CaseInsensitiveIdentifiers(t *testing.T) {
	r, err := NewResolver(Config{Default: "hunyuan", Strict: true}, zap.NewNop())
	require.NoError(t, err)

	for _, name := range []string{"DeepSeek", "DEEPSEEK", " deepseek "} {
		b, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, "deepseek", b.Name)
		assert.Equal(t, "deepseek-r1:1.5b", b.Model)
	}
}

func TestResolver_EmptyResolvesDefault(t *testing.T) {
	r, err := NewResolver(Config{Default: "llama"}, zap.NewNop())
	require.NoError(t, err)

	b, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "llama", b.Name)
}

func TestResolver_StrictMode(t *testing.T) {
	r, err := NewResolver(Config{Default: "hunyuan", Strict: true}, zap.NewNop())
	require.NoError(t, err)

	_, err = r.Resolve("no-such-model")
	require.Error(t, err)
	assert.Equal(t, types.ErrUnknownBackend, types.GetErrorCode(err))

	// Known identifiers still resolve in strict mode.
	_, err = r.Resolve("deepseek")
	assert.NoError(t, err)
}

func TestNewResolver_InvalidDefault(t *testing.T) {
	_, err := NewResolver(Config{Default: "bogus"}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, types.ErrUnknownBackend, types.GetErrorCode(err))
}

func TestSupportedBackends(t *testing.T) {
	assert.Len(t, SupportedBackends(), 6)
}
