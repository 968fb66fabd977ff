package memory

import (
	"sync"

	"github.com/BaSui01/ragserve/types"
)

// History 是单个会话的消息序列。并发安全；
// 同会话的写入按调用顺序串行化。
type History struct {
	mu       sync.Mutex
	messages []types.Message
}

// NewHistory 创建空历史。
func NewHistory() *History {
	return &History{}
}

// Append 追加消息到历史末尾。
func (h *History) Append(msgs ...types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Messages 返回历史消息的副本。
func (h *History) Messages() []types.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Replace 用 msgs 整体替换历史内容。
func (h *History) Replace(msgs []types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = make([]types.Message, len(msgs))
	copy(h.messages, msgs)
}

// Update 持锁执行 fn，把历史整体变换为 fn 的返回值。
// fn 收到的是副本，快照与写回之间不会穿插其他写入。
func (h *History) Update(fn func(msgs []types.Message) []types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := make([]types.Message, len(h.messages))
	copy(cur, h.messages)
	next := fn(cur)
	h.messages = make([]types.Message, len(next))
	copy(h.messages, next)
}

// Len 返回消息条数。
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear 清空历史。
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
