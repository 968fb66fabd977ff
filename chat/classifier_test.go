package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"greeting", "hi", 1},
		{"punctuation only", "?! ... --", 0},
		{"short question", "what is Go", 3},
		{"ten words", "one two three four five six seven eight nine ten", 10},
		{"numbers count", "version 2 of protocol 7", 5},
		{"cjk segments", "什么是向量检索", 7}, // UAX#29 按单个汉字分段
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	const text = "how does maximal marginal relevance retrieval work"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(text))
	}
}
