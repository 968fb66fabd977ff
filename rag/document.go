package rag

// Document 是向量库中的一个文本块：内容、来源元数据与嵌入向量。
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
}

// RetrievedChunk 是检索返回的文本块，按所选度量降序排列
// （首个为最相关）。
type RetrievedChunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}
