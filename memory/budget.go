package memory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/types"
)

// RetentionPolicy 控制超出 token 预算时如何收缩历史。
type RetentionPolicy string

const (
	// PolicySummarize 把整段历史压缩为一条摘要消息（默认）。
	PolicySummarize RetentionPolicy = "summarize"
	// PolicyTruncate 从最旧的消息开始丢弃。
	PolicyTruncate RetentionPolicy = "truncate"
	// PolicySummarizeThenTruncate 先摘要，仍超预算时再截断。
	PolicySummarizeThenTruncate RetentionPolicy = "summarize_then_truncate"
)

// ParsePolicy 解析策略名，空串或未知值回落到 PolicySummarize。
func ParsePolicy(s string) RetentionPolicy {
	switch RetentionPolicy(s) {
	case PolicyTruncate:
		return PolicyTruncate
	case PolicySummarizeThenTruncate:
		return PolicySummarizeThenTruncate
	default:
		return PolicySummarize
	}
}

// DefaultTokenBudget 默认历史 token 预算。
const DefaultTokenBudget = 1000

// TokenCounter 预算检查所需的最小分词能力。
type TokenCounter interface {
	CountMessages(msgs []types.Message) (int, error)
}

// BudgetKeeper 在每轮对话后检查并收缩超预算的历史。
type BudgetKeeper struct {
	budget     int
	policy     RetentionPolicy
	counter    TokenCounter
	summarizer *Summarizer // PolicyTruncate 下可为 nil
	logger     *zap.Logger
}

// NewBudgetKeeper 创建预算管理器。budget <= 0 时取 DefaultTokenBudget。
func NewBudgetKeeper(budget int, policy RetentionPolicy, counter TokenCounter, summarizer *Summarizer, logger *zap.Logger) *BudgetKeeper {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetKeeper{
		budget:     budget,
		policy:     policy,
		counter:    counter,
		summarizer: summarizer,
		logger:     logger.With(zap.String("component", "budget_keeper")),
	}
}

// Enforce 检查 h 的 token 总量，超预算时按策略收缩。
// 摘要失败时回落到截断，保证收缩总能完成。
func (k *BudgetKeeper) Enforce(ctx context.Context, h *History) error {
	msgs := h.Messages()
	total, err := k.counter.CountMessages(msgs)
	if err != nil {
		return fmt.Errorf("count history tokens: %w", err)
	}
	if total <= k.budget {
		return nil
	}

	k.logger.Info("history over budget",
		zap.Int("tokens", total),
		zap.Int("budget", k.budget),
		zap.String("policy", string(k.policy)))

	switch k.policy {
	case PolicyTruncate:
		return k.truncate(h, msgs)
	case PolicySummarizeThenTruncate:
		if err := k.summarize(ctx, h, msgs); err != nil {
			k.logger.Warn("summarize failed, falling back to truncate", zap.Error(err))
			return k.truncate(h, msgs)
		}
		reduced := h.Messages()
		n, err := k.counter.CountMessages(reduced)
		if err != nil {
			return fmt.Errorf("count summarized history: %w", err)
		}
		if n > k.budget {
			return k.truncate(h, reduced)
		}
		return nil
	default: // PolicySummarize
		if err := k.summarize(ctx, h, msgs); err != nil {
			k.logger.Warn("summarize failed, falling back to truncate", zap.Error(err))
			return k.truncate(h, msgs)
		}
		return nil
	}
}

// summarize 把快照部分替换为一条摘要消息。
func (k *BudgetKeeper) summarize(ctx context.Context, h *History, msgs []types.Message) error {
	if k.summarizer == nil {
		return fmt.Errorf("no summarizer configured")
	}
	summary, err := k.summarizer.Summarize(ctx, msgs)
	if err != nil {
		return err
	}
	k.apply(h, msgs, []types.Message{
		types.NewSystemMessage("Conversation summary: " + summary),
	})
	return nil
}

// truncate 从最旧的消息开始丢弃，直到总量回到预算内。
func (k *BudgetKeeper) truncate(h *History, msgs []types.Message) error {
	reduced := msgs
	for len(reduced) > 1 {
		reduced = reduced[1:]
		n, err := k.counter.CountMessages(reduced)
		if err != nil {
			return fmt.Errorf("count truncated history: %w", err)
		}
		if n <= k.budget {
			break
		}
	}
	k.apply(h, msgs, reduced)
	return nil
}

// apply 在历史锁内写回收缩结果。快照之后并发追加的消息
// 原样保留在收缩结果之后，不会被覆盖丢失。
func (k *BudgetKeeper) apply(h *History, snapshot, reduced []types.Message) {
	h.Update(func(cur []types.Message) []types.Message {
		out := make([]types.Message, 0, len(reduced)+len(cur))
		out = append(out, reduced...)
		if len(cur) > len(snapshot) {
			out = append(out, cur[len(snapshot):]...)
		}
		return out
	})
}
