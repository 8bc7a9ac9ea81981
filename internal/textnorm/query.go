package textnorm

import "strings"

// 构造站点搜索串用的规则（保留大小写，只处理会让站点搜索失败的字符）。
var (
	// QuoteRules 统一弯引号并把 " - " 改写为 ": "。
	QuoteRules = []Rule{
		R(`[‘’‚‛′]`, "'"),
		R(`[“”„‟″]`, `"`),
		R(`\s+[-–—]\s+`, ": "),
	}
	// DropQuotedWords 去掉含引号的词（部分站点搜索引擎遇到引号直接返回空）。
	DropQuotedWords = []Rule{
		R(`\S*['"]\S*`, " "),
	}
	// AlnumOnly 只保留字母数字、撇号与逗号。
	AlnumOnly = []Rule{
		R(`[^A-Za-z0-9',\s]`, " "),
	}
)

// Query 依次应用 rules 后折叠空白，并在 maxLen 内按词边界截断（maxLen<=0 表示不截断）。
func Query(s string, maxLen int, rules ...Rule) string {
	s = apply(s, rules)
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 && s[maxLen] != ' ' {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,:")
}
