// Package factory maps chat backend identifiers to LLM Provider instances.
// It imports the provider sub-packages and resolves the closed identifier
// set, breaking the import cycle that would occur if this logic lived in
// the llm package directly.
package factory

import (
	"net/http"
	"strings"

	"github.com/BaSui01/ragserve/llm"
	"github.com/BaSui01/ragserve/llm/providers"
	"github.com/BaSui01/ragserve/llm/providers/hunyuan"
	"github.com/BaSui01/ragserve/llm/providers/ollama"
	"github.com/BaSui01/ragserve/llm/providers/openaicompat"
	"github.com/BaSui01/ragserve/types"
	"go.uber.org/zap"
)

// BackendKind 后端种类（封闭集合）。
type BackendKind string

const (
	// BackendOllama 本地推理端点（Ollama OpenAI 兼容接口）。
	BackendOllama BackendKind = "ollama"
	// BackendHunyuan 腾讯混元托管 API。
	BackendHunyuan BackendKind = "hunyuan"
	// BackendOpenAI OpenAI 托管 API。
	BackendOpenAI BackendKind = "openai"
)

// backendBinding binds a chat identifier to a backend kind and model name.
type backendBinding struct {
	Kind  BackendKind
	Model string
}

// builtinBackends is the closed identifier set accepted on /chat requests.
// Four local-model identifiers and two hosted-API identifiers.
var builtinBackends = map[string]backendBinding{
	"llama":    {Kind: BackendOllama, Model: "llama3.2:1b"},
	"qwen":     {Kind: BackendOllama, Model: "qwen2.5:1.5b"},
	"deepseek": {Kind: BackendOllama, Model: "deepseek-r1:1.5b"},
	"gemini":   {Kind: BackendOllama, Model: "gemma3:1b"},
	"hunyuan":  {Kind: BackendHunyuan, Model: "hunyuan-lite"},
	"openai":   {Kind: BackendOpenAI, Model: "gpt-3.5-turbo"},
}

// SupportedBackends returns the closed set of accepted backend identifiers.
func SupportedBackends() []string {
	names := make([]string, 0, len(builtinBackends))
	for name := range builtinBackends {
		names = append(names, name)
	}
	return names
}

// Config 后端解析配置。每种后端种类携带自己的类型化配置；
// 凭证与端点在启动时注入，不在源码中出现。
type Config struct {
	// Default 未识别标识符回退到的后端名（须属于封闭集合）。
	Default string `json:"default" yaml:"default"`
	// Strict 为 true 时未识别标识符返回 UNKNOWN_BACKEND 错误而非回退。
	Strict bool `json:"strict" yaml:"strict"`

	Ollama  providers.OllamaConfig  `json:"ollama" yaml:"ollama"`
	Hunyuan providers.HunyuanConfig `json:"hunyuan" yaml:"hunyuan"`
	OpenAI  providers.OpenAIConfig  `json:"openai" yaml:"openai"`
}

// Backend is a resolved chat backend: the provider client plus the model
// name the identifier is bound to.
type Backend struct {
	Name     string
	Provider llm.Provider
	Model    string
}

// Resolver resolves backend identifiers to providers. Unless strict mode
// is enabled, unrecognized identifiers fall back to the configured default
// backend with a warning logged per request.
type Resolver struct {
	registry *llm.ProviderRegistry
	cfg      Config
	logger   *zap.Logger
}

// NewResolver builds the provider clients for every backend kind and
// returns a Resolver over them.
func NewResolver(cfg Config, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Default == "" {
		cfg.Default = "hunyuan"
	}
	if _, ok := builtinBackends[cfg.Default]; !ok {
		return nil, types.NewError(types.ErrUnknownBackend,
			"default backend is not in the supported set").WithProvider(cfg.Default)
	}

	reg := llm.NewProviderRegistry()
	reg.Register(string(BackendOllama), ollama.NewOllamaProvider(cfg.Ollama, logger))
	reg.Register(string(BackendHunyuan), hunyuan.NewHunyuanProvider(cfg.Hunyuan, logger))
	reg.Register(string(BackendOpenAI), newOpenAIProvider(cfg.OpenAI, logger))

	return &Resolver{registry: reg, cfg: cfg, logger: logger}, nil
}

// Resolve maps a backend identifier to its provider and bound model.
// Matching is case-insensitive ("DeepSeek" resolves to "deepseek").
// Empty identifiers resolve to the default backend silently; unknown
// identifiers resolve to the default with a warning, or fail in strict mode.
func (r *Resolver) Resolve(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.cfg.Default
	}

	binding, ok := builtinBackends[name]
	if !ok {
		if r.cfg.Strict {
			return Backend{}, types.NewError(types.ErrUnknownBackend,
				"requested backend is not supported").WithProvider(name)
		}
		r.logger.Warn("unknown backend, falling back to default",
			zap.String("requested", name),
			zap.String("default", r.cfg.Default))
		name = r.cfg.Default
		binding = builtinBackends[name]
	}

	p, ok := r.registry.Get(string(binding.Kind))
	if !ok {
		return Backend{}, types.NewError(types.ErrProviderUnavailable,
			"backend provider not initialized").WithProvider(name)
	}

	return Backend{Name: name, Provider: p, Model: binding.Model}, nil
}

// Registry exposes the underlying provider registry (health checks, listing).
func (r *Resolver) Registry() *llm.ProviderRegistry {
	return r.registry
}

func newOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger) llm.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	oc := openaicompat.Config{
		ProviderName:  "openai",
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		DefaultModel:  cfg.Model,
		FallbackModel: "gpt-3.5-turbo",
		Timeout:       cfg.Timeout,
	}
	if cfg.Organization != "" {
		org := cfg.Organization
		oc.BuildHeaders = func(req *http.Request, apiKey string) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("OpenAI-Organization", org)
		}
	}
	return openaicompat.New(oc, logger)
}
