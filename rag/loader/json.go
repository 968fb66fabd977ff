package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BaSui01/ragserve/rag"
)

// contentFieldCandidates 按优先级尝试的内容字段名。
var contentFieldCandidates = []string{"content", "text", "body"}

// JSONLoader 载入 JSON（单对象或数组）与 JSONL 文件。
// 对象若含 content/text/body 字段则取其值，否则整个对象序列化为内容。
type JSONLoader struct{}

// Load 读取 JSON 或 JSONL 文件。
func (l *JSONLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.ToLower(filepath.Ext(source)) == ".jsonl" {
		return l.loadLines(source)
	}
	return l.loadFile(source)
}

func (l *JSONLoader) loadFile(source string) ([]rag.Document, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("json loader: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("json loader: parsing %s: %w", source, err)
		}
		return l.toDocuments(source, items), nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("json loader: parsing %s: %w", source, err)
	}
	return l.toDocuments(source, []map[string]any{obj}), nil
}

func (l *JSONLoader) loadLines(source string) ([]rag.Document, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("jsonl loader: %w", err)
	}
	defer f.Close()

	var items []map[string]any
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("jsonl loader: %s line %d: %w", source, lineNum, err)
		}
		items = append(items, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl loader: reading %s: %w", source, err)
	}
	return l.toDocuments(source, items), nil
}

func (l *JSONLoader) toDocuments(source string, items []map[string]any) []rag.Document {
	docs := make([]rag.Document, 0, len(items))
	for i, obj := range items {
		meta := baseMetadata(source, "json")
		meta["index"] = i
		docs = append(docs, rag.Document{
			ID:       fmt.Sprintf("%s#%d", source, i),
			Content:  extractContent(obj),
			Metadata: meta,
		})
	}
	return docs
}

func extractContent(obj map[string]any) string {
	for _, field := range contentFieldCandidates {
		if v, ok := obj[field]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(data)
}

// Extensions 返回支持的扩展名。
func (l *JSONLoader) Extensions() []string { return []string{".json", ".jsonl"} }
