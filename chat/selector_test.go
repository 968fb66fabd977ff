package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/rag"
)

// recordingStore 包装内存向量库，记录每次 Search 请求的 topK，
// 用于断言相似度分支（topK=k）与 MMR 分支（topK=fetch_k）的走向。
type recordingStore struct {
	*rag.InMemoryVectorStore
	requestedKs []int
}

func (s *recordingStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]rag.VectorSearchResult, error) {
	s.requestedKs = append(s.requestedKs, topK)
	return s.InMemoryVectorStore.Search(ctx, queryEmbedding, topK)
}

type constEmbedder struct{ vec []float64 }

func (e constEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	return e.vec, nil
}

func (e constEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	out := make([][]float64, len(documents))
	for i := range out {
		out[i] = e.vec
	}
	return out, nil
}

func (e constEmbedder) Name() string { return "const" }

func newSelectorFixture(t *testing.T, docCount int) (*Selector, *recordingStore) {
	t.Helper()
	store := &recordingStore{InMemoryVectorStore: rag.NewInMemoryVectorStore(zap.NewNop())}

	docs := make([]rag.Document, docCount)
	for i := range docs {
		docs[i] = rag.Document{
			ID:        string(rune('a' + i)),
			Content:   "doc " + string(rune('a'+i)),
			Embedding: []float64{1, float64(i) / 100},
		}
	}
	require.NoError(t, store.AddDocuments(context.Background(), docs))

	retriever := rag.NewRetriever(store, constEmbedder{vec: []float64{1, 0}}, zap.NewNop())
	return NewSelector(DefaultRetrievalConfig(), retriever), store
}

func TestSelector_Pick(t *testing.T) {
	s, _ := newSelectorFixture(t, 0)
	assert.Equal(t, StrategyMMR, s.Pick(0))
	assert.Equal(t, StrategyMMR, s.Pick(9))
	assert.Equal(t, StrategySimilarity, s.Pick(10))
	assert.Equal(t, StrategySimilarity, s.Pick(42))
}

func TestSelector_SimilarityBranch(t *testing.T) {
	s, store := newSelectorFixture(t, 5)

	chunks, strategy, err := s.Retrieve(context.Background(), "q", 12)
	require.NoError(t, err)
	assert.Equal(t, StrategySimilarity, strategy)
	assert.Len(t, chunks, 2)
	// 恰好一次检索，topK 为配置的 k。
	assert.Equal(t, []int{2}, store.requestedKs)
}

func TestSelector_MMRBranch(t *testing.T) {
	s, store := newSelectorFixture(t, 5)

	chunks, strategy, err := s.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Equal(t, StrategyMMR, strategy)
	assert.Len(t, chunks, 2)
	// MMR 先取 fetch_k 候选池，再在其中贪心选 k。
	assert.Equal(t, []int{20}, store.requestedKs)
}

func TestSelector_FewerDocumentsThanK(t *testing.T) {
	s, _ := newSelectorFixture(t, 1)

	chunks, _, err := s.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)

	chunks, _, err = s.Retrieve(context.Background(), "q", 15)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestRetrievalConfig_Normalize(t *testing.T) {
	got := RetrievalConfig{}.normalize()
	assert.Equal(t, DefaultRetrievalConfig(), got)

	custom := RetrievalConfig{ComplexityThreshold: 5, TopK: 3, FetchK: 30, LambdaMult: 0.7}.normalize()
	assert.Equal(t, 5, custom.ComplexityThreshold)
	assert.Equal(t, 3, custom.TopK)
}
