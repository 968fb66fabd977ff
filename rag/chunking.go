package rag

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// ChunkingConfig 分块配置。
type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`       // 块大小（tokens）
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"` // 重叠大小（tokens）
	MinChunkSize int `json:"min_chunk_size" yaml:"min_chunk_size"`
}

// DefaultChunkingConfig 默认分块配置。
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		ChunkSize:    512,
		ChunkOverlap: 102, // ~20% overlap
		MinChunkSize: 20,
	}
}

// TokenCounter 分块所需的最小分词能力。
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// DocumentChunker 将载入的文档切成带重叠的 token 窗口，
// 在句子边界断开。
type DocumentChunker struct {
	config  ChunkingConfig
	counter TokenCounter
	logger  *zap.Logger
}

// NewDocumentChunker 创建文档分块器。
func NewDocumentChunker(config ChunkingConfig, counter TokenCounter, logger *zap.Logger) *DocumentChunker {
	if config.ChunkSize <= 0 {
		config = DefaultChunkingConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentChunker{config: config, counter: counter, logger: logger}
}

// Chunk 切分单个文档内容，返回块文本列表（保持原文顺序）。
func (c *DocumentChunker) Chunk(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	total, err := c.counter.CountTokens(text)
	if err != nil {
		return nil, err
	}
	if total <= c.config.ChunkSize {
		return []string{text}, nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		chunk := strings.TrimSpace(strings.Join(current, " "))
		n, err := c.counter.CountTokens(chunk)
		if err != nil {
			return err
		}
		if n >= c.config.MinChunkSize || len(chunks) == 0 {
			chunks = append(chunks, chunk)
		} else if len(chunks) > 0 {
			// 过小的尾块并入前一块。
			chunks[len(chunks)-1] = chunks[len(chunks)-1] + " " + chunk
		}
		return nil
	}

	for _, sentence := range sentences {
		n, err := c.counter.CountTokens(sentence)
		if err != nil {
			return nil, err
		}

		if currentTokens+n > c.config.ChunkSize && len(current) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			current, currentTokens = c.carryOverlap(current)
		}

		current = append(current, sentence)
		currentTokens += n
	}
	if err := flush(); err != nil {
		return nil, err
	}

	c.logger.Debug("document chunked",
		zap.Int("total_tokens", total),
		zap.Int("chunks", len(chunks)))

	return chunks, nil
}

// carryOverlap 保留当前块尾部的句子作为下一块的开头重叠。
func (c *DocumentChunker) carryOverlap(current []string) ([]string, int) {
	if c.config.ChunkOverlap <= 0 {
		return nil, 0
	}

	var carried []string
	carriedTokens := 0
	for i := len(current) - 1; i >= 0; i-- {
		n, err := c.counter.CountTokens(current[i])
		if err != nil || carriedTokens+n > c.config.ChunkOverlap {
			break
		}
		carried = append([]string{current[i]}, carried...)
		carriedTokens += n
	}
	return carried, carriedTokens
}

// splitSentences 以 Unicode 句子终结符切分文本，保留终结符。
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	for _, r := range text {
		b.WriteRune(r)
		if isSentenceTerminator(r) {
			s := strings.TrimSpace(b.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return unicode.Is(unicode.Sentence_Terminal, r)
}
