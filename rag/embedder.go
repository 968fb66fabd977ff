package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Embedder 将文本映射为定长向量。实现必须并发安全。
type Embedder interface {
	// EmbedQuery 嵌入单个查询字符串。
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocuments 嵌入多个文档。
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name 返回嵌入提供者名称。
	Name() string
}

// HTTPEmbedderConfig 是 OpenAI 兼容 /embeddings 端点的客户端配置。
// 默认指向本地 Ollama 的 nomic-embed-text。
type HTTPEmbedderConfig struct {
	Name    string        `json:"name" yaml:"name"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// HTTPEmbedder 调用 OpenAI 兼容的 /embeddings 端点。
type HTTPEmbedder struct {
	cfg    HTTPEmbedderConfig
	client *http.Client
}

// NewHTTPEmbedder 创建嵌入客户端。
func NewHTTPEmbedder(cfg HTTPEmbedderConfig) *HTTPEmbedder {
	if cfg.Name == "" {
		cfg.Name = "ollama-embedding"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Name 返回嵌入提供者名称。
func (e *HTTPEmbedder) Name() string { return e.cfg.Name }

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// EmbedQuery 嵌入单个查询字符串。
func (e *HTTPEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vecs, err := e.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder %s: no embeddings returned", e.cfg.Name)
	}
	return vecs[0], nil
}

// EmbedDocuments 嵌入多个文档。
func (e *HTTPEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	return e.embed(ctx, documents)
}

func (e *HTTPEmbedder) embed(ctx context.Context, input []string) ([][]float64, error) {
	payload, err := json.Marshal(embedRequest{Input: input, Model: e.cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := strings.TrimRight(e.cfg.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder %s: %w", e.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedder %s: status=%d msg=%s",
			e.cfg.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	// 上游按 index 标注顺序，按其重排以保证与输入对齐。
	out := make([][]float64, len(input))
	for _, d := range er.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedder %s: embedding index %d out of range", e.cfg.Name, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("embedder %s: missing embedding for input %d", e.cfg.Name, i)
		}
	}
	return out, nil
}
