package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/types"
)

// Snapshotter 持久化会话历史快照（如 Redis），供进程重启后恢复。
// 实现缺失或出错不影响内存中的主存储。
type Snapshotter interface {
	// SaveSnapshot 保存会话的完整消息序列。
	SaveSnapshot(ctx context.Context, sessionID string, msgs []types.Message) error
	// LoadSnapshot 读取会话快照；不存在时返回 (nil, nil)。
	LoadSnapshot(ctx context.Context, sessionID string) ([]types.Message, error)
}

// SessionStore 按会话 ID 维护相互隔离的 History。
// 不同会话的操作互不阻塞；单个会话内的写入由 History 自身串行化。
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*History

	snapshots Snapshotter // 可选
	logger    *zap.Logger
}

// NewSessionStore 创建会话存储。snapshots 可为 nil。
func NewSessionStore(snapshots Snapshotter, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions:  make(map[string]*History),
		snapshots: snapshots,
		logger:    logger.With(zap.String("component", "session_store")),
	}
}

// NewSessionID 生成新会话 ID。
func NewSessionID() string {
	return uuid.NewString()
}

// Get 返回会话的 History，不存在时创建。
// 配置了快照后端时，新建会话先尝试从快照恢复。
func (s *SessionStore) Get(ctx context.Context, sessionID string) *History {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sessions[sessionID]; ok {
		return h
	}

	h = NewHistory()
	if s.snapshots != nil {
		msgs, err := s.snapshots.LoadSnapshot(ctx, sessionID)
		switch {
		case err != nil:
			s.logger.Warn("session snapshot load failed",
				zap.String("session_id", sessionID), zap.Error(err))
		case len(msgs) > 0:
			h.Replace(msgs)
			s.logger.Info("session restored from snapshot",
				zap.String("session_id", sessionID), zap.Int("messages", len(msgs)))
		}
	}
	s.sessions[sessionID] = h
	return h
}

// Persist 把会话当前内容写入快照后端。无后端时为空操作。
func (s *SessionStore) Persist(ctx context.Context, sessionID string) {
	if s.snapshots == nil {
		return
	}
	h := s.Get(ctx, sessionID)
	if err := s.snapshots.SaveSnapshot(ctx, sessionID, h.Messages()); err != nil {
		s.logger.Warn("session snapshot save failed",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Delete 移除会话。
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len 返回活跃会话数。
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
