package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/ragserve/rag"
)

func TestCompose(t *testing.T) {
	chunks := []rag.RetrievedChunk{
		{Content: "first chunk"},
		{Content: "second chunk"},
	}
	prompt := Compose("what is this about", chunks)

	assert.Contains(t, prompt, "what is this about")
	assert.Contains(t, prompt, "first chunk\n- second chunk")
	// 四条作答要求必须完整出现。
	for _, req := range []string{
		"1. Accurately answer based on the provided context information",
		"2. If there is no direct answer in the context, state that honestly",
		"3. Keep the answer concise and relevant",
		"4. Expand explanations appropriately if necessary",
	} {
		assert.Contains(t, prompt, req)
	}
	assert.True(t, strings.HasSuffix(prompt, "RESPONSE:"))
}

func TestCompose_PreservesChunkOrder(t *testing.T) {
	chunks := []rag.RetrievedChunk{
		{Content: "zeta"},
		{Content: "alpha"},
		{Content: "mid"},
	}
	prompt := Compose("q", chunks)
	assert.Contains(t, prompt, "zeta\n- alpha\n- mid")
}

func TestCompose_NoChunks(t *testing.T) {
	prompt := Compose("an uncovered question", nil)
	assert.Contains(t, prompt, "an uncovered question")
	assert.Contains(t, prompt, "The context information is:\n\n")
}

func TestCompose_Pure(t *testing.T) {
	chunks := []rag.RetrievedChunk{{Content: "c"}}
	assert.Equal(t, Compose("q", chunks), Compose("q", chunks))
}
