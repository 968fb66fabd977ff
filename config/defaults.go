package config

import "time"

// DefaultConfig 返回内置默认配置。本地开发开箱即用：
// Ollama 与嵌入端点指向 localhost，hunyuan/openai 需注入密钥。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			MetricsPort:     9090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Default: "hunyuan",
			Strict:  false,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "nomic-embed-text",
			Timeout: 30 * time.Second,
		},
		Vector: VectorConfig{
			Driver: "sqlite",
			Path:   "data/vectors.db",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    512,
			ChunkOverlap: 102,
			MinChunkSize: 20,
		},
		Retrieval: RetrievalConfig{
			ComplexityThreshold: 10,
			TopK:                2,
			FetchK:              20,
			LambdaMult:          0.5,
		},
		Memory: MemoryConfig{
			TokenBudget: 1000,
			Policy:      "summarize",
			Encoding:    "cl100k_base",
		},
		Redis: RedisConfig{
			Enabled:      false,
			Addr:         "localhost:6379",
			TTL:          24 * time.Hour,
			PoolSize:     10,
			MinIdleConns: 2,
		},
	}
}
