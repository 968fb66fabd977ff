package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/BaSui01/ragserve/rag"
)

// TextLoader 把纯文本文件整体载入为单个文档。
type TextLoader struct{}

// Load 读取文本文件。
func (l *TextLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("text loader: %w", err)
	}

	return []rag.Document{{
		ID:       source,
		Content:  string(data),
		Metadata: baseMetadata(source, "text"),
	}}, nil
}

// Extensions 返回支持的扩展名。
func (l *TextLoader) Extensions() []string { return []string{".txt"} }
