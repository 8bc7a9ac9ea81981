// Package textnorm 把片名、厂牌、人名规范化为可比较的形式。
//
// 规范化是纯函数：小写 -> 去变音符号 -> 按规则表折叠标点 -> 折叠空白；
// Title 额外去掉开头的冠词。输出只包含 [a-z0-9 ]，因此对自身幂等。
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule 是一条声明式替换规则：Pattern 的所有匹配替换为 Replace（可引用分组）。
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
}

// R 编译 pattern 并构造 Rule；pattern 非法时 panic（规则表都是包级常量）。
func R(pattern, replace string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replace: replace}
}

func apply(s string, rules []Rule) string {
	for _, r := range rules {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	return s
}

// DefaultRules 作用于已小写、已去变音符号的文本。顺序有意义：
// 称谓要在去掉 '.' 之前匹配。
var DefaultRules = []Rule{
	R(`\b(mr|mrs|sgt|lt|gen|cpt)\.`, ""),
	R(`\s*&\s*`, " and "),
	R(`\bl'`, "l "),
	R(`[',!.#]`, ""),
	R(`[@\-()/:;_+]`, " "),
	R(`[^a-z0-9\s]`, " "),
}

// articles 是各语言开头的冠词（en/fr/pt/es/de）。
var articles = func() map[string]struct{} {
	lists := [][]string{
		{"a", "an", "the"},
		{"un", "une", "des", "le", "la", "les", "l"},
		{"um", "uma", "uns", "umas", "o", "a", "os", "as"},
		{"un", "una", "unos", "unas", "el", "la", "los", "las"},
		{"ein", "eine", "eines", "einen", "einem", "einer", "das", "die", "der", "dem", "den", "des"},
	}
	m := make(map[string]struct{}, 48)
	for _, l := range lists {
		for _, w := range l {
			m[w] = struct{}{}
		}
	}
	return m
}()

// Normalizer 持有一张规则表；零值不可用，请使用 New。
type Normalizer struct {
	rules []Rule
}

// New 返回使用 DefaultRules 的 Normalizer；extra 是站点特有规则，追加在默认规则之前执行，
// 这样站点规则能看到原始标点。
func New(extra ...Rule) *Normalizer {
	rules := make([]Rule, 0, len(extra)+len(DefaultRules))
	rules = append(rules, extra...)
	rules = append(rules, DefaultRules...)
	return &Normalizer{rules: rules}
}

var std = New()

// Normalize 使用默认规则表规范化 s。
func Normalize(s string) string { return std.Normalize(s) }

// Title 使用默认规则表规范化片名（去掉开头冠词）。
func Title(s string) string { return std.Title(s) }

func (n *Normalizer) Normalize(s string) string {
	s = strings.ToLower(Fold(strings.ToLower(s)))
	s = apply(s, n.rules)
	return strings.Join(strings.Fields(s), " ")
}

// Title 与 Normalize 相同，但会反复去掉开头冠词，直到只剩一个词或开头不是冠词。
func (n *Normalizer) Title(s string) string {
	words := strings.Fields(n.Normalize(s))
	for len(words) > 1 {
		if _, ok := articles[words[0]]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold 去掉变音符号并把剩余非 ASCII 字符音译为 ASCII，保留大小写。
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	for _, r := range out {
		if r > unicode.MaxASCII {
			return unidecode.Unidecode(out)
		}
	}
	return out
}

// Compact 去掉规范化结果中的空格，用于 "studiox" 与 "studio x" 这类比较。
func Compact(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}
