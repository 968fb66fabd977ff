package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BaSui01/ragserve/rag"
)

// DocumentLoader 从单个来源（通常是文件路径）载入文档。
type DocumentLoader interface {
	// Load 读取 source 并返回文档列表。
	Load(ctx context.Context, source string) ([]rag.Document, error)

	// Extensions 返回该 loader 处理的扩展名（小写、带点）。
	Extensions() []string
}

// Registry 按扩展名把 Load 请求路由到对应的 DocumentLoader。
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]DocumentLoader
}

// NewRegistry 创建已注册全部内置 loader 的 Registry。
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]DocumentLoader)}

	for _, l := range []DocumentLoader{
		&TextLoader{},
		&MarkdownLoader{},
		&JSONLoader{},
		&CSVLoader{},
		&HTMLLoader{},
		&PDFLoader{},
	} {
		for _, ext := range l.Extensions() {
			r.loaders[ext] = l
		}
	}
	return r
}

// Register 注册（或替换）某扩展名的 loader。ext 带前导点，如 ".xml"。
func (r *Registry) Register(ext string, l DocumentLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[strings.ToLower(ext)] = l
}

// Load 按扩展名选择 loader 并委托加载。
func (r *Registry) Load(ctx context.Context, source string) ([]rag.Document, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		return nil, fmt.Errorf("loader: %q has no file extension", source)
	}

	r.mu.RLock()
	l, ok := r.loaders[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loader: unsupported file type %q", ext)
	}

	return l.Load(ctx, source)
}

// Supported 返回所有已注册扩展名（排序后）。
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// baseMetadata 是所有 loader 共用的元数据骨架。
func baseMetadata(source, format string) map[string]any {
	return map[string]any{
		"source": filepath.Base(source),
		"path":   source,
		"format": format,
	}
}
