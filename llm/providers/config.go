package providers

import "time"

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
// 凭证与端点一律来自注入配置，源代码中不允许出现字面量密钥。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// OllamaConfig 本地 Ollama Provider 配置。
type OllamaConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// HunyuanConfig Tencent Hunyuan Provider 配置。
type HunyuanConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// OpenAIConfig OpenAI Provider 配置。
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
}
