// Package cache provides the Redis-backed session snapshot store.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/types"
)

// Config Redis 连接配置。
type Config struct {
	Addr         string        `yaml:"addr" json:"addr"`
	Password     string        `yaml:"password" json:"password"`
	DB           int           `yaml:"db" json:"db"`
	TTL          time.Duration `yaml:"ttl" json:"ttl"` // 快照过期时间，0 表示不过期
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		TTL:          24 * time.Hour,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// SessionSnapshots 把会话历史以 JSON 形式存入 Redis，
// 实现 memory.Snapshotter。
type SessionSnapshots struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionSnapshots 建立 Redis 连接并验证可达。
func NewSessionSnapshots(cfg Config, logger *zap.Logger) (*SessionSnapshots, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("session snapshot store connected", zap.String("addr", cfg.Addr))

	return &SessionSnapshots{
		client: client,
		ttl:    cfg.TTL,
		logger: logger.With(zap.String("component", "session_snapshots")),
	}, nil
}

func snapshotKey(sessionID string) string {
	return "ragserve:session:" + sessionID
}

// SaveSnapshot 保存会话的完整消息序列。
func (s *SessionSnapshots) SaveSnapshot(ctx context.Context, sessionID string, msgs []types.Message) error {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot 读取会话快照；键不存在时返回 (nil, nil)。
func (s *SessionSnapshots) LoadSnapshot(ctx context.Context, sessionID string) ([]types.Message, error) {
	payload, err := s.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}

	var msgs []types.Message
	if err := json.Unmarshal(payload, &msgs); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return msgs, nil
}

// Ping 供就绪探针复用的连通性检查。
func (s *SessionSnapshots) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭连接池。
func (s *SessionSnapshots) Close() error {
	return s.client.Close()
}
