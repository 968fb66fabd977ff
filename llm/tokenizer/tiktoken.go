package tokenizer

import (
	"fmt"
	"sync"

	"github.com/BaSui01/ragserve/types"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding 历史 token 预算使用的编码（gpt-4 家族）。
const DefaultEncoding = "cl100k_base"

// TiktokenTokenizer 基于 tiktoken 的精确分词器。
type TiktokenTokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktokenTokenizer 创建以 tiktoken 为底的分词器。
func NewTiktokenTokenizer(encoding string) *TiktokenTokenizer {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenTokenizer{encoding: encoding}
}

// init lazily 初始化 tiktoken 编码（首次使用时可能下载数据）。
func (t *TiktokenTokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Validate forces encoding initialization. Call at startup: a failure here
// means the service must refuse to start.
func (t *TiktokenTokenizer) Validate() error {
	if err := t.init(); err != nil {
		return types.NewError(types.ErrClassificationUnavailable,
			"tokenizer encoding unavailable").WithCause(err)
	}
	return nil
}

// CountTokens 返回文本的精确 token 数。
func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

// CountMessages 返回消息列表的总 token 数。
func (t *TiktokenTokenizer) CountMessages(messages []types.Message) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}

	total := 0
	for _, msg := range messages {
		// 每条消息的开销: <|start|>role\n content<|end|>\n
		total += 4
		total += len(t.enc.Encode(msg.Content, nil, nil))
		total += len(t.enc.Encode(string(msg.Role), nil, nil))
	}
	if total > 0 {
		total += 3 // conversation-end overhead
	}
	return total, nil
}

// Name 返回分词器名称。
func (t *TiktokenTokenizer) Name() string {
	return fmt.Sprintf("tiktoken[%s]", t.encoding)
}
