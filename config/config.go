package config

import (
	"time"

	"github.com/BaSui01/ragserve/chat"
	"github.com/BaSui01/ragserve/internal/cache"
	"github.com/BaSui01/ragserve/llm/factory"
	"github.com/BaSui01/ragserve/llm/providers"
	"github.com/BaSui01/ragserve/rag"
)

// Config 服务完整配置。
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`
	Vector    VectorConfig    `yaml:"vector" env:"VECTOR"`
	Chunking  ChunkingConfig  `yaml:"chunking" env:"CHUNKING"`
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`
	Memory    MemoryConfig    `yaml:"memory" env:"MEMORY"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RateLimitRPS 单客户端每秒请求数上限，0 关闭限流。
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// CORSOrigins 允许的跨域来源；"*" 表示全部放行。
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug/info/warn/error
	Format string `yaml:"format" env:"FORMAT"` // json/console
}

// ProviderConfig 单个 LLM 提供者的连接配置。
type ProviderConfig struct {
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LLMConfig 后端解析配置。
type LLMConfig struct {
	// Default 未识别标识符回退的后端名。
	Default string `yaml:"default" env:"DEFAULT"`
	// Strict 为 true 时未识别标识符直接报错。
	Strict bool `yaml:"strict" env:"STRICT"`

	Ollama  ProviderConfig `yaml:"ollama" env:"OLLAMA"`
	Hunyuan ProviderConfig `yaml:"hunyuan" env:"HUNYUAN"`
	OpenAI  ProviderConfig `yaml:"openai" env:"OPENAI"`
	// OpenAIOrganization 可选的 OpenAI 组织头。
	OpenAIOrganization string `yaml:"openai_organization" env:"OPENAI_ORGANIZATION"`
}

// EmbeddingConfig 嵌入端点配置。
type EmbeddingConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// VectorConfig 向量存储配置。
type VectorConfig struct {
	// Driver sqlite 或 memory。
	Driver string `yaml:"driver" env:"DRIVER"`
	// Path SQLite 索引文件路径。
	Path string `yaml:"path" env:"PATH"`
}

// ChunkingConfig 文档分块配置。
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
	MinChunkSize int `yaml:"min_chunk_size" env:"MIN_CHUNK_SIZE"`
}

// RetrievalConfig 检索策略配置。
type RetrievalConfig struct {
	ComplexityThreshold int     `yaml:"complexity_threshold" env:"COMPLEXITY_THRESHOLD"`
	TopK                int     `yaml:"top_k" env:"TOP_K"`
	FetchK              int     `yaml:"fetch_k" env:"FETCH_K"`
	LambdaMult          float64 `yaml:"lambda_mult" env:"LAMBDA_MULT"`
}

// MemoryConfig 会话记忆配置。
type MemoryConfig struct {
	TokenBudget int    `yaml:"token_budget" env:"TOKEN_BUDGET"`
	Policy      string `yaml:"policy" env:"POLICY"` // summarize/truncate/summarize_then_truncate
	// Encoding tiktoken 编码名，用于 token 计数。
	Encoding string `yaml:"encoding" env:"ENCODING"`
	// SummaryModel 摘要用的后端标识，空取 LLM 默认。
	SummaryModel string `yaml:"summary_model" env:"SUMMARY_MODEL"`
}

// RedisConfig 可选的会话快照后端。
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" env:"ENABLED"`
	Addr         string        `yaml:"addr" env:"ADDR"`
	Password     string        `yaml:"password" env:"PASSWORD"`
	DB           int           `yaml:"db" env:"DB"`
	TTL          time.Duration `yaml:"ttl" env:"TTL"`
	PoolSize     int           `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// FactoryConfig 转换为后端解析器配置。
func (c *LLMConfig) FactoryConfig() factory.Config {
	return factory.Config{
		Default: c.Default,
		Strict:  c.Strict,
		Ollama: providers.OllamaConfig{
			BaseProviderConfig: c.Ollama.base(),
		},
		Hunyuan: providers.HunyuanConfig{
			BaseProviderConfig: c.Hunyuan.base(),
		},
		OpenAI: providers.OpenAIConfig{
			BaseProviderConfig: c.OpenAI.base(),
			Organization:       c.OpenAIOrganization,
		},
	}
}

func (p ProviderConfig) base() providers.BaseProviderConfig {
	return providers.BaseProviderConfig{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		Timeout: p.Timeout,
	}
}

// EmbedderConfig 转换为嵌入客户端配置。
func (c *EmbeddingConfig) EmbedderConfig() rag.HTTPEmbedderConfig {
	return rag.HTTPEmbedderConfig{
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Model:   c.Model,
		Timeout: c.Timeout,
	}
}

// RetrievalOptions 转换为检索选择器配置。
func (c *RetrievalConfig) RetrievalOptions() chat.RetrievalConfig {
	return chat.RetrievalConfig{
		ComplexityThreshold: c.ComplexityThreshold,
		TopK:                c.TopK,
		FetchK:              c.FetchK,
		LambdaMult:          c.LambdaMult,
	}
}

// ChunkingOptions 转换为分块器配置。
func (c *ChunkingConfig) ChunkingOptions() rag.ChunkingConfig {
	return rag.ChunkingConfig{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		MinChunkSize: c.MinChunkSize,
	}
}

// CacheConfig 转换为 Redis 快照配置。
func (c *RedisConfig) CacheConfig() cache.Config {
	return cache.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		TTL:          c.TTL,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
