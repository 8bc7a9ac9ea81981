package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity 返回 1 - 编辑距离/较长串长度（按 rune 计）。两个空串视为完全相同。
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// containsWords 判断 a 是否按词边界包含 b（b 非空且不等于 a）。
func containsWords(a, b string) bool {
	if b == "" || a == b {
		return false
	}
	return strings.Contains(" "+a+" ", " "+b+" ")
}
