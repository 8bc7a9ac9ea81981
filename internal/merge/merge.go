// Package merge 把站点字段与 registry 字段合并进 FilmRecord。
//
// 字段优先级：
//   - 厂牌/片名：文件名（永不被站点覆盖）
//   - 发行日期：search 阶段确定的站点日期；否则详情页日期（年份一致时）；文件名年份仅作回退
//   - 时长：站点；其次 registry；其次文件名
//   - 类型/国家：所有来源的并集，大小写不敏感去重，按字母序
//   - 合集：文件名 ∪ 站点（及按偏好加入的类型/国家/演员/导演），保留首次出现的写法
//   - 简介：站点；站点为空或更短时用 registry
//
// Merge 是幂等的：Merge(Merge(r, s, g), s, g) == Merge(r, s, g)。
package merge

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// Merge 返回合并后的新记录；输入记录不被修改。
// 演员/导演应在调用前由 resolve 写入 rec.Cast / rec.Directors。
func Merge(rec domain.FilmRecord, site domain.SiteFields, reg *domain.RegistryMatch, p domain.Prefs) domain.FilmRecord {
	out := rec

	// search 已确定日期时保持不变；只替换文件名年份回退，且年份须一致。
	if !rec.DateResolved && !site.ReleaseDate.IsZero() &&
		(!rec.Expect.HasYear() || site.ReleaseDate.Year() == rec.Expect.Year) {
		out.CompareDate = site.ReleaseDate
		out.DateResolved = true
	}

	switch {
	case site.Duration > 0:
		out.Duration = site.Duration
	case out.Duration > 0:
	case reg != nil && reg.Duration > 0:
		out.Duration = reg.Duration
	default:
		out.Duration = rec.Expect.Duration
	}

	out.Synopsis = pickSynopsis(site.Synopsis, reg, rec.Synopsis)

	if site.Rating > 0 {
		out.Rating = site.Rating
	}
	out.Compilation = rec.Compilation || site.Compilation || (reg != nil && reg.Compilation)
	if reg != nil {
		out.Registry = reg
	}

	out.Genres = SortedUnion(rec.Genres, site.Genres)
	out.Countries = SortedUnion(rec.Countries, site.Countries)
	out.Posters = Union(rec.Posters, site.Posters)
	out.Art = Union(rec.Art, site.Art)

	out.Collections = collections(out, site, p)
	out.Cast = append([]domain.Credit(nil), rec.Cast...)
	out.Directors = append([]domain.Credit(nil), rec.Directors...)
	return out
}

func pickSynopsis(site string, reg *domain.RegistryMatch, existing string) string {
	site = strings.TrimSpace(site)
	regSyn := ""
	if reg != nil {
		regSyn = strings.TrimSpace(reg.Synopsis)
	}
	switch {
	case site != "" && len(site) >= len(regSyn):
		return site
	case regSyn != "":
		return regSyn
	case site != "":
		return site
	default:
		return strings.TrimSpace(existing)
	}
}

func collections(rec domain.FilmRecord, site domain.SiteFields, p domain.Prefs) []string {
	// 清空选项：丢弃已有合集，只从本次计算的来源重建。
	base := rec.Collections
	if p.ClearCollectionsOnUpdate {
		base = rec.Expect.Collections
	}

	sources := [][]string{base, rec.Expect.Collections}
	if p.StudioToCollection && strings.TrimSpace(rec.Expect.Studio) != "" {
		sources = append(sources, []string{rec.Expect.Studio})
	}
	sources = append(sources, site.Collections)
	if p.GenreToCollection {
		sources = append(sources, rec.Genres)
	}
	if p.CountryToCollection {
		sources = append(sources, rec.Countries)
	}
	if p.CastToCollection {
		sources = append(sources, creditNames(rec.Cast))
	}
	if p.DirectorToCollection {
		sources = append(sources, creditNames(rec.Directors))
	}
	return Union(sources...)
}

func creditNames(cs []domain.Credit) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

// Union 按大小写不敏感去重合并多个列表，保留首次出现的写法与顺序。
func Union(lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, l := range lists {
		for _, s := range l {
			s = strings.Join(strings.Fields(s), " ")
			if s == "" {
				continue
			}
			k := strings.ToLower(s)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// SortedUnion 与 Union 相同，但全小写的条目改为标题式大小写，结果按字母序排列。
func SortedUnion(lists ...[]string) []string {
	out := Union(lists...)
	titleCaser := cases.Title(language.English)
	for i, s := range out {
		if s == strings.ToLower(s) {
			out[i] = titleCaser.String(s)
		}
	}
	sortFold(out)
	return out
}
