package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/inbucket/html2text"

	"github.com/BaSui01/ragserve/rag"
)

// HTMLLoader 把 HTML 文件转成纯文本后作为单个文档载入。
// 表格保留对齐格式，链接保留 URL。
type HTMLLoader struct{}

// Load 读取并转换 HTML 文件。
func (l *HTMLLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("html loader: %w", err)
	}
	defer f.Close()

	text, err := html2text.FromReader(f, html2text.Options{PrettyTables: true})
	if err != nil {
		return nil, fmt.Errorf("html loader: converting %s: %w", source, err)
	}

	return []rag.Document{{
		ID:       source,
		Content:  text,
		Metadata: baseMetadata(source, "html"),
	}}, nil
}

// Extensions 返回支持的扩展名。
func (l *HTMLLoader) Extensions() []string { return []string{".html", ".htm"} }
