package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

var domainSuffixRE = regexp.MustCompile(`(?i)\.(com|tv|net)\b`)

// legalSuffixes 只在词尾剥离，并且至少保留一个词。
var legalSuffixes = map[string]struct{}{
	"productions": {}, "production": {}, "prod": {}, "prods": {},
	"studios": {}, "studio": {}, "films": {}, "film": {}, "pictures": {},
	"entertainment": {}, "media": {}, "inc": {}, "llc": {}, "ltd": {}, "co": {},
}

// cleanStudio 把厂牌名规范化，并去掉域名后缀与常见公司后缀。
func cleanStudio(s string) string {
	s = textnorm.Normalize(domainSuffixRE.ReplaceAllString(s, ""))
	words := strings.Fields(s)
	for len(words) > 1 {
		if _, ok := legalSuffixes[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// StudioKey 返回用于厂牌比较的紧凑形式。
func StudioKey(s string) string { return textnorm.Compact(cleanStudio(s)) }

// Studio 比较候选厂牌与期望厂牌：相等或任一方包含另一方即接受。
// 期望厂牌为空（文件名没有厂牌段）时不做比较。
func Studio(exp domain.Expectation, candStudio string) Result {
	const field = "studio"
	want := StudioKey(exp.Studio)
	if want == "" {
		return accept(field, 1, "文件名没有厂牌，跳过")
	}
	got := StudioKey(candStudio)
	if got == "" {
		return reject(field, 0, "站点厂牌为空")
	}
	if got == want {
		return accept(field, 1, "")
	}
	if strings.Contains(got, want) || strings.Contains(want, got) {
		return accept(field, Similarity(got, want), fmt.Sprintf("%q 与 %q 互相包含", got, want))
	}
	return reject(field, Similarity(got, want), "厂牌不一致：%q vs %q", candStudio, exp.Studio)
}

// AnyStudio 对多个候选厂牌逐一比较，任一接受即接受（部分站点列出多个发行方）。
func AnyStudio(exp domain.Expectation, studios []string) Result {
	if len(studios) == 0 {
		return Studio(exp, "")
	}
	var last Result
	for _, s := range studios {
		r := Studio(exp, s)
		if r.Accepted() {
			return r
		}
		last = r
	}
	return last
}
