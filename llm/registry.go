package llm

import (
	"sort"
	"sync"
)

// ProviderRegistry 按后端种类持有 Provider 客户端。
// 种类到标识符的映射与回退策略在 factory 包，这里只做并发安全的存取。
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderRegistry 创建空注册表。
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]Provider)}
}

// Register 注册指定种类的 Provider，同名覆盖。
func (r *ProviderRegistry) Register(kind string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[kind] = p
}

// Get 按种类取 Provider。
func (r *ProviderRegistry) Get(kind string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[kind]
	return p, ok
}

// List 返回已注册种类，按字典序。
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Len 返回已注册种类数。
func (r *ProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
