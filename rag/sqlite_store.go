package rag

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/ragserve/internal/database"
)

// chunkRow 是 SQLite 中的文档块行。嵌入以小端 float64 序列存储。
type chunkRow struct {
	ID        string `gorm:"primaryKey"`
	Content   string
	Metadata  string // JSON
	Embedding []byte
}

// TableName 指定表名。
func (chunkRow) TableName() string { return "chunks" }

// SQLiteVectorStore 持久化向量存储。检索为全量扫描 + 余弦相似度，
// 与内存实现同一语义；适合中小规模索引。
type SQLiteVectorStore struct {
	db     *gorm.DB
	pool   *database.Pool
	logger *zap.Logger
}

// NewSQLiteVectorStore 打开（或创建）path 处的索引文件。
func NewSQLiteVectorStore(path string, logger *zap.Logger) (*SQLiteVectorStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite vector store: %w", err)
	}
	if err := db.AutoMigrate(&chunkRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite vector store: %w", err)
	}

	pool, err := database.NewPool(db, database.SQLitePoolConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("configure sqlite pool: %w", err)
	}

	return &SQLiteVectorStore{
		db:     db,
		pool:   pool,
		logger: logger.With(zap.String("component", "sqlite_vector_store")),
	}, nil
}

// Ping 检查底层数据库连接，供就绪探针使用。
func (s *SQLiteVectorStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close 关闭底层数据库连接。
func (s *SQLiteVectorStore) Close() error {
	return s.pool.Close()
}

// AddDocuments 添加文档
func (s *SQLiteVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	rows := make([]chunkRow, 0, len(docs))
	for _, doc := range docs {
		if doc.Embedding == nil {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		rows = append(rows, chunkRow{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  string(meta),
			Embedding: encodeVector(doc.Embedding),
		})
	}

	// 同 ID 重复入库视为重新索引，覆盖旧行。
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error; err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	s.logger.Info("documents added to vector store", zap.Int("count", len(docs)))
	return nil
}

// Search 搜索相似文档
func (s *SQLiteVectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error) {
	var rows []chunkRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	results := make([]VectorSearchResult, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		similarity := CosineSimilarity(queryEmbedding, doc.Embedding)
		results = append(results, VectorSearchResult{
			Document: doc,
			Score:    similarity,
			Distance: 1.0 - similarity,
		})
	}

	sortByScore(results)

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// DeleteDocuments 删除文档
func (s *SQLiteVectorStore) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&chunkRow{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Count 返回文档计数
func (s *SQLiteVectorStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&chunkRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return int(n), nil
}

// ClearAll removes every chunk from the index.
func (s *SQLiteVectorStore) ClearAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&chunkRow{}).Error; err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	s.logger.Info("all documents cleared from vector store")
	return nil
}

func rowToDocument(row chunkRow) (Document, error) {
	doc := Document{
		ID:        row.ID,
		Content:   row.Content,
		Embedding: decodeVector(row.Embedding),
	}
	if row.Metadata != "" && row.Metadata != "null" {
		if err := json.Unmarshal([]byte(row.Metadata), &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("unmarshal metadata for %s: %w", row.ID, err)
		}
	}
	return doc, nil
}

// encodeVector 以小端 float64 序列编码向量。
func encodeVector(v []float64) []byte {
	out := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(f))
	}
	return out
}

// decodeVector 解码 encodeVector 的输出。
func decodeVector(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}
