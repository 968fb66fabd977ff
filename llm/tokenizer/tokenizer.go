// Package tokenizer provides token counting for conversation history
// budgeting. The tiktoken-backed implementation must be validated at
// startup: an unavailable encoding is a fatal configuration error, not a
// per-request condition.
package tokenizer

import "github.com/BaSui01/ragserve/types"

// Tokenizer 是统一的 token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数。
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数，
	// 包括每条消息的开销（角色标记、分隔符等）。
	CountMessages(messages []types.Message) (int, error)

	// Name 返回分词器的名称。
	Name() string
}

// EstimatorTokenizer 提供基于字符的 token 估算，
// 用于没有精确编码可用的模型。
type EstimatorTokenizer struct {
	charsPerToken float64
	msgOverhead   int
}

// NewEstimatorTokenizer 创建估算分词器。
func NewEstimatorTokenizer() *EstimatorTokenizer {
	return &EstimatorTokenizer{
		charsPerToken: 4.0,
		msgOverhead:   4,
	}
}

// CountTokens 估算文本 token 数。中文字符约 1.5 字符/token，
// 其他字符约 4 字符/token。
func (t *EstimatorTokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	var chineseCount, otherCount int
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FA5 {
			chineseCount++
		} else {
			otherCount++
		}
	}
	tokens := float64(chineseCount)/1.5 + float64(otherCount)/t.charsPerToken
	if tokens < 1 {
		return 1, nil
	}
	return int(tokens), nil
}

// CountMessages 估算消息列表总 token 数。
func (t *EstimatorTokenizer) CountMessages(messages []types.Message) (int, error) {
	total := 0
	for _, msg := range messages {
		n, _ := t.CountTokens(msg.Content)
		total += n + t.msgOverhead
	}
	return total, nil
}

// Name 返回分词器名称。
func (t *EstimatorTokenizer) Name() string { return "estimator" }
