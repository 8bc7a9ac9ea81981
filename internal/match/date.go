package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// DefaultDateLayouts 覆盖常见站点格式；站点可以在 Candidate.DateLayouts 里提供更具体的格式。
var DefaultDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
	"2006-01-02",
	"2006/01/02",
	"Jan 2006",
	"January 2006",
}

var yearRE = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseDate 尝试把站点日期文本解析为日期。
// full=false 表示只解析到年份（返回该年 1 月 1 日）。
func ParseDate(raw string, layouts []string) (t time.Time, full bool, ok bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return time.Time{}, false, false
	}
	for _, l := range append(append([]string(nil), layouts...), DefaultDateLayouts...) {
		if d, err := time.Parse(l, raw); err == nil {
			return d.UTC(), hasDay(l), true
		}
	}
	if m := yearRE.FindString(raw); m != "" {
		y, _ := strconv.Atoi(m)
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), false, true
	}
	return time.Time{}, false, false
}

// hasDay 判断 layout 是否包含“日”（去掉年份 2006 后仍含 2）。
func hasDay(layout string) bool {
	return strings.Contains(strings.ReplaceAll(layout, "2006", ""), "2")
}

// Date 比较候选日期与期望年份。
//
// - 期望没有年份：不比较，直接接受（若站点有完整日期则一并返回）
// - 站点没有可解析日期：接受，日期回退由调用方处理
// - 否则年份必须相等；多个日期时优先取年份相等的完整日期
func Date(exp domain.Expectation, cand domain.Candidate) Result {
	const field = "date"

	var (
		exact, partial, anyFull time.Time
		parsed                  []int
	)
	for _, raw := range cand.Dates {
		d, full, ok := ParseDate(raw, cand.DateLayouts)
		if !ok {
			continue
		}
		parsed = append(parsed, d.Year())
		if full && anyFull.IsZero() {
			anyFull = d
		}
		if exp.HasYear() && d.Year() == exp.Year {
			if full && exact.IsZero() {
				exact = d
			}
			if !full && partial.IsZero() {
				partial = d
			}
		}
	}

	if !exp.HasYear() {
		r := accept(field, 1, "文件名没有年份，跳过")
		r.Date = anyFull
		return r
	}
	if len(parsed) == 0 {
		return accept(field, 1, "站点没有可用日期")
	}
	if !exact.IsZero() {
		r := accept(field, 1, "")
		r.Date = exact
		return r
	}
	if !partial.IsZero() {
		r := accept(field, 0.9, "站点只有年份")
		r.Date = partial
		return r
	}
	return reject(field, 0, "年份不一致：站点 %v vs 文件名 %d", parsed, exp.Year)
}
