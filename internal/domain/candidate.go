package domain

import "time"

// Candidate 是站点搜索结果中的一条候选（未经验证）。
// 只在匹配阶段使用；不匹配即丢弃。
type Candidate struct {
	Site   string
	URL    string
	Title  string
	Studio string

	// Dates 是站点给出的原始日期文本（可能有多个，例如 released/produced）。
	Dates       []string
	DateLayouts []string

	// Duration 单位分钟；0 表示站点未提供。
	Duration int

	// Partial 表示列表页缺少 studio/date 等字段，需要读取详情页补全。
	Partial bool
}

// SiteFields 是 update 阶段从站点详情页读取的字段。
type SiteFields struct {
	Title       string
	Studio      string
	ReleaseDate time.Time
	Duration    int

	Synopsis    string
	Genres      []string
	Countries   []string
	Collections []string

	Cast      []string
	Directors []string

	Posters []string
	Art     []string

	Rating      float64
	Compilation bool
}
