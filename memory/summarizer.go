package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/ragserve/llm"
	"github.com/BaSui01/ragserve/types"
)

// summarizePromptTemplate 历史压缩提示词。
const summarizePromptTemplate = `Write a concise summary of the following:
%s
CONSCISE SUMMARY IN THE LANGUAGE OF THE TEXT:`

// Summarizer 调用 LLM 把一段对话压缩成摘要。
type Summarizer struct {
	provider llm.Provider
	model    string
}

// NewSummarizer 创建摘要器。model 为空时由 provider 使用默认模型。
func NewSummarizer(provider llm.Provider, model string) *Summarizer {
	return &Summarizer{provider: provider, model: model}
}

// Summarize 压缩消息序列，返回摘要文本。
func (s *Summarizer) Summarize(ctx context.Context, msgs []types.Message) (string, error) {
	if len(msgs) == 0 {
		return "", nil
	}

	var transcript strings.Builder
	for _, m := range msgs {
		transcript.WriteString(string(m.Role))
		transcript.WriteString(": ")
		transcript.WriteString(m.Content)
		transcript.WriteString("\n")
	}

	prompt := fmt.Sprintf(summarizePromptTemplate, transcript.String())
	resp, err := s.provider.Completion(ctx, &llm.ChatRequest{
		Model:    s.model,
		Messages: []types.Message{types.NewUserMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("summarize history: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
