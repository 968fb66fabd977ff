package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/llm"
	"github.com/BaSui01/ragserve/types"
)

// fakeCounter counts each character as one token.
type fakeCounter struct{}

func (fakeCounter) CountMessages(msgs []types.Message) (int, error) {
	n := 0
	for _, m := range msgs {
		n += len(m.Content)
	}
	return n, nil
}

// fakeProvider returns a canned completion or an error.
type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{Message: types.NewAssistantMessage(p.reply)}},
	}, nil
}

func (p *fakeProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func TestHistory_AppendAndCopy(t *testing.T) {
	h := NewHistory()
	h.Append(types.NewUserMessage("hello"), types.NewAssistantMessage("hi"))

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)

	// Mutating the returned slice must not affect the history.
	msgs[0].Content = "tampered"
	assert.Equal(t, "hello", h.Messages()[0].Content)
}

func TestHistory_Replace(t *testing.T) {
	h := NewHistory()
	h.Append(types.NewUserMessage("a"), types.NewAssistantMessage("b"))
	h.Replace([]types.Message{types.NewSystemMessage("summary")})

	require.Equal(t, 1, h.Len())
	assert.Equal(t, types.RoleSystem, h.Messages()[0].Role)
}

func TestSessionStore_IsolatesSessions(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop())
	ctx := context.Background()

	a := store.Get(ctx, "session-a")
	b := store.Get(ctx, "session-b")
	a.Append(types.NewUserMessage("only in a"))

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
	assert.Same(t, a, store.Get(ctx, "session-a"))
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_ConcurrentSessionsDoNotInterleave(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop())
	ctx := context.Background()
	const turns = 50

	var wg sync.WaitGroup
	for _, id := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			h := store.Get(ctx, id)
			for i := 0; i < turns; i++ {
				h.Append(
					types.NewUserMessage(fmt.Sprintf("%s-q%d", id, i)),
					types.NewAssistantMessage(fmt.Sprintf("%s-a%d", id, i)),
				)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"alpha", "beta"} {
		msgs := store.Get(ctx, id).Messages()
		require.Len(t, msgs, 2*turns)
		for i, m := range msgs {
			assert.True(t, strings.HasPrefix(m.Content, id+"-"), "message %d of %s leaked from another session: %q", i, id, m.Content)
		}
	}
}

type fakeSnapshots struct {
	mu    sync.Mutex
	data  map[string][]types.Message
	fails bool
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{data: make(map[string][]types.Message)}
}

func (f *fakeSnapshots) SaveSnapshot(ctx context.Context, sessionID string, msgs []types.Message) error {
	if f.fails {
		return errors.New("backend down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[sessionID] = msgs
	return nil
}

func (f *fakeSnapshots) LoadSnapshot(ctx context.Context, sessionID string) ([]types.Message, error) {
	if f.fails {
		return nil, errors.New("backend down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[sessionID], nil
}

func TestSessionStore_RestoresFromSnapshot(t *testing.T) {
	snaps := newFakeSnapshots()
	ctx := context.Background()

	first := NewSessionStore(snaps, zap.NewNop())
	h := first.Get(ctx, "s1")
	h.Append(types.NewUserMessage("q"), types.NewAssistantMessage("a"))
	first.Persist(ctx, "s1")

	// A fresh store (new process) sees the persisted history.
	second := NewSessionStore(snaps, zap.NewNop())
	restored := second.Get(ctx, "s1")
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, "q", restored.Messages()[0].Content)
}

func TestSessionStore_SnapshotFailureIsNonFatal(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.fails = true
	store := NewSessionStore(snaps, zap.NewNop())
	ctx := context.Background()

	h := store.Get(ctx, "s1")
	h.Append(types.NewUserMessage("q"))
	store.Persist(ctx, "s1")

	assert.Equal(t, 1, store.Get(ctx, "s1").Len())
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}

func TestBudgetKeeper_UnderBudgetIsNoOp(t *testing.T) {
	provider := &fakeProvider{reply: "never used"}
	keeper := NewBudgetKeeper(100, PolicySummarize, fakeCounter{}, NewSummarizer(provider, ""), zap.NewNop())

	h := NewHistory()
	h.Append(types.NewUserMessage("short"))
	require.NoError(t, keeper.Enforce(context.Background(), h))

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "short", h.Messages()[0].Content)
	assert.Zero(t, provider.calls)
}

func TestBudgetKeeper_SummarizeReplacesHistory(t *testing.T) {
	provider := &fakeProvider{reply: "the gist"}
	keeper := NewBudgetKeeper(10, PolicySummarize, fakeCounter{}, NewSummarizer(provider, ""), zap.NewNop())

	h := NewHistory()
	h.Append(
		types.NewUserMessage("a long question about things"),
		types.NewAssistantMessage("a long answer about things"),
	)
	require.NoError(t, keeper.Enforce(context.Background(), h))

	msgs := h.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Conversation summary: the gist", msgs[0].Content)
	assert.Equal(t, 1, provider.calls)
}

func TestBudgetKeeper_TruncateDropsOldest(t *testing.T) {
	keeper := NewBudgetKeeper(10, PolicyTruncate, fakeCounter{}, nil, zap.NewNop())

	h := NewHistory()
	h.Append(
		types.NewUserMessage("oldest message"), // 14 chars
		types.NewAssistantMessage("middle"),    // 6 chars
		types.NewUserMessage("new"),            // 3 chars
	)
	require.NoError(t, keeper.Enforce(context.Background(), h))

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "middle", msgs[0].Content)
	assert.Equal(t, "new", msgs[1].Content)
}

func TestBudgetKeeper_SummarizeFailureFallsBackToTruncate(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model unavailable")}
	keeper := NewBudgetKeeper(10, PolicySummarize, fakeCounter{}, NewSummarizer(provider, ""), zap.NewNop())

	h := NewHistory()
	h.Append(
		types.NewUserMessage("a very long first message"),
		types.NewAssistantMessage("tail"),
	)
	require.NoError(t, keeper.Enforce(context.Background(), h))

	msgs := h.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "tail", msgs[0].Content)
}

// racingCounter 在第一次计数时向历史追加一条消息，
// 模拟同会话的另一轮请求落在快照与写回之间。
type racingCounter struct {
	h        *History
	injected types.Message
	once     sync.Once
}

func (c *racingCounter) CountMessages(msgs []types.Message) (int, error) {
	c.once.Do(func() { c.h.Append(c.injected) })
	n := 0
	for _, m := range msgs {
		n += len(m.Content)
	}
	return n, nil
}

func TestHistory_Update(t *testing.T) {
	h := NewHistory()
	h.Append(types.NewUserMessage("a"), types.NewAssistantMessage("b"))

	h.Update(func(msgs []types.Message) []types.Message { return msgs[1:] })

	msgs := h.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "b", msgs[0].Content)
}

func TestBudgetKeeper_ConcurrentAppendSurvivesTruncate(t *testing.T) {
	h := NewHistory()
	h.Append(
		types.NewUserMessage("aaaaaaaa"),      // 8 chars
		types.NewAssistantMessage("bbbbbbbb"), // 8 chars
	)

	counter := &racingCounter{h: h, injected: types.NewUserMessage("late turn")}
	keeper := NewBudgetKeeper(10, PolicyTruncate, counter, nil, zap.NewNop())
	require.NoError(t, keeper.Enforce(context.Background(), h))

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "bbbbbbbb", msgs[0].Content)
	assert.Equal(t, "late turn", msgs[1].Content)
}

func TestBudgetKeeper_ConcurrentAppendSurvivesSummarize(t *testing.T) {
	h := NewHistory()
	h.Append(
		types.NewUserMessage("a very long answer exceeding the budget"),
	)

	counter := &racingCounter{h: h, injected: types.NewUserMessage("late turn")}
	provider := &fakeProvider{reply: "the gist"}
	keeper := NewBudgetKeeper(10, PolicySummarize, counter, NewSummarizer(provider, ""), zap.NewNop())
	require.NoError(t, keeper.Enforce(context.Background(), h))

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Conversation summary: the gist", msgs[0].Content)
	assert.Equal(t, "late turn", msgs[1].Content)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicySummarize, ParsePolicy(""))
	assert.Equal(t, PolicySummarize, ParsePolicy("bogus"))
	assert.Equal(t, PolicyTruncate, ParsePolicy("truncate"))
	assert.Equal(t, PolicySummarizeThenTruncate, ParsePolicy("summarize_then_truncate"))
}
