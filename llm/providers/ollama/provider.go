// Package ollama provides the local-inference Provider backed by an Ollama
// server's OpenAI-compatible endpoint.
package ollama

import (
	"github.com/BaSui01/ragserve/llm/providers"
	"github.com/BaSui01/ragserve/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// DefaultBaseURL 本地 Ollama 服务的 OpenAI 兼容端点。
const DefaultBaseURL = "http://localhost:11434/v1"

// OllamaProvider 通过 Ollama 的 OpenAI 兼容接口实现本地模型推理。
// Ollama 不需要 API key；BaseURL 可配置以指向远端实例。
type OllamaProvider struct {
	*openaicompat.Provider
}

// NewOllamaProvider 创建新的 Ollama 提供者实例。
func NewOllamaProvider(cfg providers.OllamaConfig, logger *zap.Logger) *OllamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &OllamaProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "ollama",
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: "llama3.2:1b",
			Timeout:       cfg.Timeout,
		}, logger),
	}
}
