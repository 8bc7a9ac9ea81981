package filename

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

// 命名约定：Studio - Title (Year) [Cast1, Cast2].ext
// 只有 Title 是必需的；Title 不能以括号开头（否则年份/演员会被误认为标题）。
var nameRE = regexp.MustCompile(`^(?:(?P<studio>[^\[\(]+?)\s+-\s+)?(?P<title>[^\s\[\(].*?)(?:\s*\((?P<year>\d{4})\))?(?:\s*\[(?P<cast>[^\]]*)\])?$`)

// 标题内的系列分段："Series 2 - Subtitle" 或 "Series 2: Subtitle"。
var (
	partSepRE = regexp.MustCompile(`\s+[-–]\s+|:\s+`)
	seriesRE  = regexp.MustCompile(`(?i)^(.+?)\s+(?:#|no\.?\s*|vol(?:ume)?\.?\s*|part\s+)?(\d{1,3})$`)
)

var videoExts = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".m4v": {}, ".mov": {}, ".wmv": {},
}

// IsVideoExt 判断扩展名（小写，带点）是否为支持的视频格式。
func IsVideoExt(ext string) bool {
	_, ok := videoExts[strings.ToLower(ext)]
	return ok
}

// Options 控制期望记录中由偏好决定的部分。
type Options struct {
	// Duration 由宿主从媒体文件读取（分钟）；0 表示未知。
	Duration int

	TitleToCollection  bool
	StudioToCollection bool
}

// OptionsFromPrefs 从偏好设置构造 Options。
func OptionsFromPrefs(p domain.Prefs, duration int) Options {
	return Options{
		Duration:           duration,
		TitleToCollection:  p.TitleToCollection,
		StudioToCollection: p.StudioToCollection,
	}
}

// Parse 从文件路径解析期望记录。
// 不符合命名约定时返回 *domain.ParseError。
func Parse(path string, opts Options) (domain.Expectation, error) {
	base := filepath.Base(strings.TrimSpace(path))
	if ext := filepath.Ext(base); IsVideoExt(ext) {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.Join(strings.Fields(base), " ")
	if base == "" || base == "." {
		return domain.Expectation{}, &domain.ParseError{Path: path, Reason: "文件名为空"}
	}

	m := nameRE.FindStringSubmatch(base)
	if m == nil {
		return domain.Expectation{}, &domain.ParseError{Path: path, Reason: "缺少标题段"}
	}
	studio := strings.TrimSpace(m[nameRE.SubexpIndex("studio")])
	title := strings.TrimSpace(m[nameRE.SubexpIndex("title")])
	if textnorm.Normalize(title) == "" {
		return domain.Expectation{}, &domain.ParseError{Path: path, Reason: "标题段为空"}
	}

	year := 0
	if y := m[nameRE.SubexpIndex("year")]; y != "" {
		year, _ = strconv.Atoi(y)
	}

	series, searchTitle := splitSeries(title)

	exp := domain.Expectation{
		Path:          path,
		Studio:        studio,
		Title:         title,
		SearchTitle:   searchTitle,
		Series:        series,
		CompareStudio: textnorm.Normalize(studio),
		CompareTitle:  textnorm.Title(title),
		Year:          year,
		Cast:          splitCast(m[nameRE.SubexpIndex("cast")]),
		Duration:      opts.Duration,
	}
	exp.Collections = collections(exp, opts)
	return exp, nil
}

// ParseFile 是 Parse 的 VideoFile 版本（批量运行使用）。
func ParseFile(v domain.VideoFile, opts Options) (domain.Expectation, error) {
	return Parse(v.AbsPath, opts)
}

// splitSeries 拆出系列片段；searchTitle 取最后一个非系列片段（全部是系列时取完整标题）。
func splitSeries(title string) ([]domain.SeriesEntry, string) {
	parts := partSepRE.Split(title, -1)
	var (
		series []domain.SeriesEntry
		rest   string
	)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if sm := seriesRE.FindStringSubmatch(p); sm != nil {
			series = append(series, domain.SeriesEntry{Name: strings.TrimSpace(sm[1]), Number: sm[2]})
			continue
		}
		rest = p
	}
	if rest == "" {
		rest = title
	}
	return series, rest
}

func splitCast(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, name)
	}
	return out
}

func collections(exp domain.Expectation, opts Options) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}

	if opts.TitleToCollection {
		if exp.IsSeries() {
			for _, s := range exp.Series {
				add(s.Name)
			}
		} else {
			add(exp.Title)
		}
	}
	if opts.StudioToCollection {
		add(exp.Studio)
	}
	return out
}
