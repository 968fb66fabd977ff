package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/ragserve/rag"
)

// MarkdownLoader 按 ATX 标题切分 Markdown 文件，每节一个文档。
// 没有标题的文件整体作为单个文档返回。
type MarkdownLoader struct{}

// Load 读取并按标题切分 Markdown 文件。
func (l *MarkdownLoader) Load(ctx context.Context, source string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %w", err)
	}
	defer f.Close()

	type section struct {
		heading string
		level   int
		lines   []string
	}

	var sections []section
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if heading, level := parseATXHeading(line); heading != "" {
			sections = append(sections, section{heading: heading, level: level})
			continue
		}
		if len(sections) == 0 {
			// 首个标题之前的内容作为前言节。
			sections = append(sections, section{})
		}
		sections[len(sections)-1].lines = append(sections[len(sections)-1].lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("markdown loader: reading %s: %w", source, err)
	}

	var docs []rag.Document
	for i, sec := range sections {
		content := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		if content == "" && sec.heading == "" {
			continue
		}

		meta := baseMetadata(source, "markdown")
		meta["section"] = i
		if sec.heading != "" {
			meta["heading"] = sec.heading
			meta["heading_level"] = sec.level
		}

		docs = append(docs, rag.Document{
			ID:       fmt.Sprintf("%s#%d", source, i),
			Content:  content,
			Metadata: meta,
		})
	}
	return docs, nil
}

// parseATXHeading 解析 "# 标题" 形式的行，非标题返回 ("", 0)。
func parseATXHeading(line string) (string, int) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for _, r := range trimmed {
		if r != '#' {
			break
		}
		level++
	}
	if level < 1 || level > 6 {
		return "", 0
	}
	heading := strings.TrimSpace(trimmed[level:])
	if heading == "" {
		return "", 0
	}
	return heading, level
}

// Extensions 返回支持的扩展名。
func (l *MarkdownLoader) Extensions() []string { return []string{".md"} }
