package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/llm"
	"github.com/BaSui01/ragserve/llm/factory"
	"github.com/BaSui01/ragserve/memory"
	"github.com/BaSui01/ragserve/types"
)

// Request 单轮问答输入。
type Request struct {
	SessionID string // 为空时由调用方先行创建
	Text      string
	Model     string // 后端标识；为空时用配置默认
}

// Response 单轮问答输出。
type Response struct {
	Result    string
	SessionID string
	Strategy  Strategy // 本轮使用的检索策略
	Backend   string   // 实际命中的后端标识
	Model     string   // 实际调用的模型
	Elapsed   time.Duration
}

// BackendResolver 把后端标识解析为具体 Provider 与模型。
// *factory.Resolver 是生产实现。
type BackendResolver interface {
	Resolve(name string) (factory.Backend, error)
}

// PipelineMetrics 上报流水线阶段指标。
// *metrics.Collector 是生产实现；可为 nil。
type PipelineMetrics interface {
	ObserveRetrieval(strategy, status string, duration time.Duration)
	ObserveLLMRequest(provider, model, status string, duration time.Duration)
}

// Orchestrator 串联完整问答流水线。各协作方由构造时注入，
// 本身无内部状态，可并发使用。
type Orchestrator struct {
	selector *Selector
	resolver BackendResolver
	sessions *memory.SessionStore
	keeper   *memory.BudgetKeeper
	metrics  PipelineMetrics // 可为 nil
	logger   *zap.Logger
}

// NewOrchestrator 创建流水线编排器。collector 可为 nil。
func NewOrchestrator(
	selector *Selector,
	resolver BackendResolver,
	sessions *memory.SessionStore,
	keeper *memory.BudgetKeeper,
	collector PipelineMetrics,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		selector: selector,
		resolver: resolver,
		sessions: sessions,
		keeper:   keeper,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "orchestrator")),
	}
}

// Respond 执行一轮问答：分类 → 检索 → 组装 → 调用模型。
// 任何阶段失败都不会改动会话记忆；只有拿到模型回答后才追加
// 本轮的用户与助手消息，并随即执行记忆预算收缩。
func (o *Orchestrator) Respond(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	score := Classify(req.Text)

	retrievalStart := time.Now()
	chunks, strategy, err := o.selector.Retrieve(ctx, req.Text, score)
	if o.metrics != nil {
		o.metrics.ObserveRetrieval(string(strategy), statusLabel(err), time.Since(retrievalStart))
	}
	if err != nil {
		return nil, types.AsError(err, types.ErrRetrievalFailure)
	}

	prompt := Compose(req.Text, chunks)

	backend, err := o.resolver.Resolve(req.Model)
	if err != nil {
		return nil, types.AsError(err, types.ErrUnknownBackend)
	}

	history := o.sessions.Get(ctx, req.SessionID)
	msgs := append(history.Messages(), types.NewUserMessage(prompt))

	completionStart := time.Now()
	resp, err := backend.Provider.Completion(ctx, &llm.ChatRequest{
		SessionID: req.SessionID,
		Model:     backend.Model,
		Messages:  msgs,
	})
	if o.metrics != nil {
		o.metrics.ObserveLLMRequest(backend.Name, backend.Model, statusLabel(err), time.Since(completionStart))
	}
	if err != nil {
		return nil, types.AsError(err, types.ErrModelInvocationFailure)
	}
	answer := resp.Text()

	// 成功后才落记忆：记原始问题而非组装后的提示词。
	history.Append(types.NewUserMessage(req.Text), types.NewAssistantMessage(answer))
	if err := o.keeper.Enforce(ctx, history); err != nil {
		o.logger.Warn("memory budget enforcement failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}
	o.sessions.Persist(ctx, req.SessionID)

	elapsed := time.Since(start)
	o.logger.Info("chat turn completed",
		zap.String("session_id", req.SessionID),
		zap.Int("complexity_score", score),
		zap.String("strategy", string(strategy)),
		zap.String("backend", backend.Name),
		zap.String("model", backend.Model),
		zap.Int("chunks", len(chunks)),
		zap.Duration("elapsed", elapsed))

	return &Response{
		Result:    answer,
		SessionID: req.SessionID,
		Strategy:  strategy,
		Backend:   backend.Name,
		Model:     backend.Model,
		Elapsed:   elapsed,
	}, nil
}

// statusLabel 把错误映射为指标 status 标签。
func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
