package chat

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Classify 返回 text 中承载词义的分段数，作为问题复杂度得分。
// 分词遵循 UAX #29 边界规则，纯空白与标点分段不计入。
// 无副作用，相同输入恒返回相同得分。
func Classify(text string) int {
	count := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if isWordBearing(tokens.Value()) {
			count++
		}
	}
	return count
}

// isWordBearing 判断分段是否含字母或数字。
func isWordBearing(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
