package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/BaSui01/ragserve/rag"
)

// PDFLoader 抽取 PDF 的纯文本，每页一个文档。
// 扫描件（无文本层）会得到空内容并被跳过。
type PDFLoader struct{}

// Load 读取 PDF 文件。
func (l *PDFLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(source)
	if err != nil {
		return nil, fmt.Errorf("pdf loader: %w", err)
	}
	defer f.Close()

	var docs []rag.Document
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf loader: page %d of %s: %w", pageNum, source, err)
		}
		trimmed := bytes.TrimSpace([]byte(text))
		if len(trimmed) == 0 {
			continue
		}

		meta := baseMetadata(source, "pdf")
		meta["page"] = pageNum

		docs = append(docs, rag.Document{
			ID:       fmt.Sprintf("%s#page%d", source, pageNum),
			Content:  string(trimmed),
			Metadata: meta,
		})
	}
	return docs, nil
}

// Extensions 返回支持的扩展名。
func (l *PDFLoader) Extensions() []string { return []string{".pdf"} }
