package match

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

// Title 比较候选片名与期望片名。
//
// 期望侧同时尝试完整标题与系列拆分后的 searchTitle；候选侧同时尝试原始片名
// 与去掉开头厂牌名后的片名（很多站点把厂牌拼在标题前面）。
// 相似度达到阈值或任一方按词包含另一方即接受。
func Title(exp domain.Expectation, cand domain.Candidate, threshold float64) Result {
	const field = "title"
	if threshold <= 0 || threshold > 1 {
		return fail(field, fmt.Errorf("title 相似度阈值非法：%v", threshold))
	}

	got := textnorm.Title(cand.Title)
	if got == "" {
		return reject(field, 0, "站点片名为空")
	}

	targets := []string{exp.CompareTitle}
	if exp.IsSeries() && exp.SearchTitle != exp.Title {
		if st := textnorm.Title(exp.SearchTitle); st != "" && st != exp.CompareTitle {
			targets = append(targets, st)
		}
	}

	variants := append([]string{got}, stripStudioPrefix(got, exp.CompareStudio, cand.Studio)...)

	best := 0.0
	for _, want := range targets {
		if want == "" {
			continue
		}
		for _, v := range variants {
			if containsWords(v, want) || containsWords(want, v) {
				return accept(field, maxf(Similarity(v, want), threshold), fmt.Sprintf("%q 与 %q 互相包含", v, want))
			}
			if s := Similarity(v, want); s > best {
				best = s
			}
		}
	}
	if best >= threshold {
		return accept(field, best, "")
	}
	return reject(field, best, "片名相似度 %.2f 低于阈值 %.2f：%q vs %q", best, threshold, got, exp.CompareTitle)
}

// stripStudioPrefix 返回去掉开头厂牌名后的候选片名（可能有多个厂牌写法）。
func stripStudioPrefix(title string, studios ...string) []string {
	var out []string
	for _, s := range studios {
		s = textnorm.Normalize(s)
		if s == "" {
			continue
		}
		for _, prefix := range []string{s, textnorm.Compact(s), cleanStudio(s)} {
			if prefix == "" {
				continue
			}
			if rest, ok := strings.CutPrefix(title, prefix+" "); ok && rest != "" {
				out = append(out, textnorm.Title(rest))
			}
		}
	}
	return out
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
