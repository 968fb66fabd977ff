package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/ragserve/rag"
)

// CSVLoader 载入 CSV 文件，首行作表头，每行一个文档。
// 行内容以 "列名: 值" 形式拼接，便于检索时保留字段语义。
type CSVLoader struct{}

// Load 读取 CSV 文件。
func (l *CSVLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("csv loader: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv loader: parsing %s: %w", source, err)
	}
	if len(records) < 2 {
		// 空文件或只有表头。
		return nil, nil
	}

	header := records[0]
	docs := make([]rag.Document, 0, len(records)-1)
	for i, row := range records[1:] {
		var parts []string
		for j, cell := range row {
			if cell == "" {
				continue
			}
			if j < len(header) && header[j] != "" {
				parts = append(parts, header[j]+": "+cell)
			} else {
				parts = append(parts, cell)
			}
		}

		meta := baseMetadata(source, "csv")
		meta["row"] = i + 1
		meta["columns"] = header

		docs = append(docs, rag.Document{
			ID:       fmt.Sprintf("%s#row%d", source, i+1),
			Content:  strings.Join(parts, "\n"),
			Metadata: meta,
		})
	}
	return docs, nil
}

// Extensions 返回支持的扩展名。
func (l *CSVLoader) Extensions() []string { return []string{".csv"} }
