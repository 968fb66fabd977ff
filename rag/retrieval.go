package rag

import (
	"context"

	"github.com/BaSui01/ragserve/types"
	"go.uber.org/zap"
)

// Retriever 在向量库上执行两种检索算法：纯相似度 Top-K 与
// 最大边际相关（MMR）。两者对静态索引都是确定性的。
type Retriever struct {
	store    VectorStore
	embedder Embedder
	logger   *zap.Logger
}

// NewRetriever 创建检索器。
func NewRetriever(store VectorStore, embedder Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger.With(zap.String("component", "retriever")),
	}
}

// SimilaritySearch 返回与查询最相似的 k 个文本块（相似度降序）。
// 索引中不足 k 条时返回现有全部，不报错。
func (r *Retriever) SimilaritySearch(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, types.NewError(types.ErrRetrievalFailure, "query embedding failed").WithCause(err)
	}

	results, err := r.store.Search(ctx, queryEmbedding, k)
	if err != nil {
		return nil, types.NewError(types.ErrRetrievalFailure, "vector search failed").WithCause(err)
	}

	return toChunks(results), nil
}

// MMRSearch 先取 fetchK 个最近候选，再贪心选出 k 个，按
// lambdaMult 在查询相关性与已选集合多样性之间加权
// （1.0 = 纯相关，0.0 = 纯多样）。
func (r *Retriever) MMRSearch(ctx context.Context, query string, k, fetchK int, lambdaMult float64) ([]RetrievedChunk, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, types.NewError(types.ErrRetrievalFailure, "query embedding failed").WithCause(err)
	}

	candidates, err := r.store.Search(ctx, queryEmbedding, fetchK)
	if err != nil {
		return nil, types.NewError(types.ErrRetrievalFailure, "vector search failed").WithCause(err)
	}

	selected := mmrSelect(queryEmbedding, candidates, k, lambdaMult)

	r.logger.Debug("mmr search",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)))

	return toChunks(selected), nil
}

// mmrSelect 对候选池执行贪心 MMR 选择。候选须已按相似度降序。
func mmrSelect(queryEmbedding []float64, candidates []VectorSearchResult, k int, lambdaMult float64) []VectorSearchResult {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]VectorSearchResult, 0, k)
	remaining := make([]VectorSearchResult, len(candidates))
	copy(remaining, candidates)

	// 首选永远是相似度最高的候选。
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0

		for i, cand := range remaining {
			relevance := cand.Score

			// 与已选集合的最大相似度作为冗余惩罚。
			maxRedundancy := 0.0
			for _, sel := range selected {
				sim := CosineSimilarity(cand.Document.Embedding, sel.Document.Embedding)
				if sim > maxRedundancy {
					maxRedundancy = sim
				}
			}

			score := lambdaMult*relevance - (1.0-lambdaMult)*maxRedundancy
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func toChunks(results []VectorSearchResult) []RetrievedChunk {
	chunks := make([]RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, RetrievedChunk{
			Content:  res.Document.Content,
			Metadata: res.Document.Metadata,
			Score:    res.Score,
		})
	}
	return chunks
}
