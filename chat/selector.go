package chat

import (
	"context"

	"github.com/BaSui01/ragserve/rag"
)

// Strategy 标识单次请求使用的检索算法。
type Strategy string

const (
	// StrategySimilarity 纯相似度 top-k 检索，用于复杂（长）问题。
	StrategySimilarity Strategy = "similarity"
	// StrategyMMR 最大边际相关检索，用于简单（短）问题，换取多样性。
	StrategyMMR Strategy = "mmr"
)

// RetrievalConfig 检索策略参数。
type RetrievalConfig struct {
	// ComplexityThreshold 词段数达到该值视为复杂问题。
	ComplexityThreshold int `json:"complexity_threshold" yaml:"complexity_threshold"`
	// TopK 每次检索返回的片段数。
	TopK int `json:"top_k" yaml:"top_k"`
	// FetchK MMR 候选池大小。
	FetchK int `json:"fetch_k" yaml:"fetch_k"`
	// LambdaMult MMR 相关性与多样性的权衡系数，取值 [0,1]。
	LambdaMult float64 `json:"lambda_mult" yaml:"lambda_mult"`
}

// DefaultRetrievalConfig 默认检索参数。
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		ComplexityThreshold: 10,
		TopK:                2,
		FetchK:              20,
		LambdaMult:          0.5,
	}
}

// normalize 填补零值字段。
func (c RetrievalConfig) normalize() RetrievalConfig {
	d := DefaultRetrievalConfig()
	if c.ComplexityThreshold <= 0 {
		c.ComplexityThreshold = d.ComplexityThreshold
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.FetchK <= 0 {
		c.FetchK = d.FetchK
	}
	if c.LambdaMult <= 0 || c.LambdaMult > 1 {
		c.LambdaMult = d.LambdaMult
	}
	return c
}

// Selector 根据复杂度得分选择并执行检索分支。
type Selector struct {
	cfg       RetrievalConfig
	retriever *rag.Retriever
}

// NewSelector 创建检索策略选择器。
func NewSelector(cfg RetrievalConfig, retriever *rag.Retriever) *Selector {
	return &Selector{cfg: cfg.normalize(), retriever: retriever}
}

// Pick 返回得分对应的策略。
func (s *Selector) Pick(score int) Strategy {
	if score >= s.cfg.ComplexityThreshold {
		return StrategySimilarity
	}
	return StrategyMMR
}

// Retrieve 按得分执行恰好一条检索分支。
// 候选不足 TopK 不是错误，返回实际数量。
func (s *Selector) Retrieve(ctx context.Context, query string, score int) ([]rag.RetrievedChunk, Strategy, error) {
	strategy := s.Pick(score)

	var (
		chunks []rag.RetrievedChunk
		err    error
	)
	if strategy == StrategySimilarity {
		chunks, err = s.retriever.SimilaritySearch(ctx, query, s.cfg.TopK)
	} else {
		chunks, err = s.retriever.MMRSearch(ctx, query, s.cfg.TopK, s.cfg.FetchK, s.cfg.LambdaMult)
	}
	if err != nil {
		return nil, strategy, err
	}
	return chunks, strategy, nil
}
