package domain

import "time"

// 演员/导演条目的解析状态（用于 legend 展示）。
const (
	CreditVerified   = "verified"   // registry 命中且记录了角色
	CreditRegistry   = "registry"   // registry 命中但没有角色信息
	CreditUnresolved = "unresolved" // registry 未命中：占位头像 + 未知角色
)

// RoleUnknown 是未解析条目的角色标记。
const RoleUnknown = "?"

// Credit 是演员或导演的最终条目（name -> photo/role）。
type Credit struct {
	Name   string `json:"name"`
	Photo  string `json:"photo"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// Performer 是 registry 上的人物记录。
type Performer struct {
	Name    string   `json:"name"`
	URL     string   `json:"url,omitempty"`
	Photo   string   `json:"photo,omitempty"`
	Role    string   `json:"role,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// RegistryMatch 是 registry 上查到的影片（只读）。
type RegistryMatch struct {
	FilmID      string      `json:"film_id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Studio      string      `json:"studio,omitempty"`
	Year        int         `json:"year,omitempty"`
	Duration    int         `json:"duration,omitempty"`
	Synopsis    string      `json:"synopsis,omitempty"`
	Compilation bool        `json:"compilation,omitempty"`
	Performers  []Performer `json:"performers,omitempty"`
	Directors   []Performer `json:"directors,omitempty"`
}

// FilmRecord 是 search -> update 之间传递的累积结果。
//
// 约束：
// - SiteURL / CompareDate 在 search 阶段确定；update 阶段不覆盖（registry 的更高优先级数据除外）
// - 引擎本身不持有跨文件状态：FilmRecord 以不透明 ID 的形式交给宿主往返
type FilmRecord struct {
	Expect Expectation `json:"expect"`

	Site         string    `json:"site"`
	SiteURL      string    `json:"site_url"`
	SiteTitle    string    `json:"site_title,omitempty"`
	SiteStudio   string    `json:"site_studio,omitempty"`
	CompareDate  time.Time `json:"compare_date"`
	DateResolved bool      `json:"date_resolved,omitempty"` // CompareDate 来自站点日期而非文件名年份

	Duration    int     `json:"duration,omitempty"`
	Synopsis    string  `json:"synopsis,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Compilation bool    `json:"compilation,omitempty"`
	Legend      string  `json:"legend,omitempty"`

	Genres      []string `json:"genres,omitempty"`
	Collections []string `json:"collections,omitempty"`
	Countries   []string `json:"countries,omitempty"`

	Cast      []Credit `json:"cast,omitempty"`
	Directors []Credit `json:"directors,omitempty"`

	Posters []string `json:"posters,omitempty"`
	Art     []string `json:"art,omitempty"`

	Registry *RegistryMatch `json:"registry,omitempty"`
}

// NewFilmRecord 以期望记录为起点创建 FilmRecord。
// CompareDate 默认取文件名年份的 1 月 1 日；没有年份时为零值。
func NewFilmRecord(exp Expectation) FilmRecord {
	r := FilmRecord{
		Expect:      exp,
		Collections: append([]string(nil), exp.Collections...),
	}
	if exp.HasYear() {
		r.CompareDate = time.Date(exp.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return r
}

// 内容分级固定为成人级。
const (
	ContentRating    = "X"
	ContentRatingAge = 18
)

// Metadata 是 update 返回给宿主的最终字段。
type Metadata struct {
	Studio    string `json:"studio"`
	Title     string `json:"title"`
	Tagline   string `json:"tagline"`
	Released  string `json:"released,omitempty"` // ISO date
	Year      int    `json:"year,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	SiteURL   string `json:"site_url"`
	SortTitle string `json:"sort_title,omitempty"`

	ContentRating    string `json:"content_rating"`
	ContentRatingAge int    `json:"content_rating_age"`

	Collections []string `json:"collections"`
	Genres      []string `json:"genres"`
	Countries   []string `json:"countries"`
	Directors   []Credit `json:"directors"`
	Cast        []Credit `json:"cast"`

	Posters []string `json:"posters"`
	Art     []string `json:"art"`

	Summary string  `json:"summary"`
	Rating  float64 `json:"rating,omitempty"`
}
