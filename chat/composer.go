package chat

import (
	"fmt"
	"strings"

	"github.com/BaSui01/ragserve/rag"
)

// Compose 把问题与检索片段装配成最终提示词。纯函数；
// 片段内容以 "\n- " 连接，保持检索返回顺序。
func Compose(question string, chunks []rag.RetrievedChunk) string {
	contents := make([]string, 0, len(chunks))
	for _, c := range chunks {
		contents = append(contents, c.Content)
	}
	return fmt.Sprintf(chatPromptTemplate, question, strings.Join(contents, "\n- "))
}
