// Package nfo 把最终元数据导出为 Kodi/Jellyfin/Emby 可读取的 movie NFO。
package nfo

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

type movie struct {
	XMLName xml.Name `xml:"movie"`

	Title     string `xml:"title"`
	SortTitle string `xml:"sorttitle,omitempty"`
	Tagline   string `xml:"tagline,omitempty"`
	Plot      string `xml:"plot,omitempty"`

	Studio string `xml:"studio,omitempty"`
	Sets   []set  `xml:"set,omitempty"`

	Premiered string `xml:"premiered,omitempty"`
	Year      int    `xml:"year,omitempty"`
	Runtime   int    `xml:"runtime,omitempty"`

	MPAA      string   `xml:"mpaa,omitempty"`
	Countries []string `xml:"country,omitempty"`

	Thumbs []thumb  `xml:"thumb,omitempty"`
	Fanart *fanart  `xml:"fanart,omitempty"`
	Rating *float64 `xml:"rating,omitempty"`

	Directors []string `xml:"director,omitempty"`
	Actors    []actor  `xml:"actor,omitempty"`
	Genres    []string `xml:"genre,omitempty"`
	Tags      []string `xml:"tag,omitempty"`

	Website string `xml:"website,omitempty"`
}

type set struct {
	Name string `xml:"name"`
}

type thumb struct {
	Aspect string `xml:"aspect,attr,omitempty"`
	URL    string `xml:",chardata"`
}

type fanart struct {
	Thumbs []thumb `xml:"thumb"`
}

type actor struct {
	Name  string `xml:"name"`
	Role  string `xml:"role,omitempty"`
	Order int    `xml:"order"`
	Thumb string `xml:"thumb,omitempty"`
}

// Encode 把 Metadata 转成 NFO（XML）。
//
// 规则：
// - 字段缺失允许为空；列表去空白、去重、保持输入顺序
// - 合集同时写成 <set> 与 <tag>，分级写成 "X" 加年龄（例如 "X 18+"）
func Encode(meta domain.Metadata) ([]byte, error) {
	m := movie{
		Title:     strings.TrimSpace(meta.Title),
		SortTitle: strings.TrimSpace(meta.SortTitle),
		Tagline:   strings.TrimSpace(meta.Tagline),
		Plot:      strings.TrimSpace(meta.Summary),

		Studio: strings.TrimSpace(meta.Studio),

		Premiered: strings.TrimSpace(meta.Released),
		Year:      meta.Year,
		Runtime:   meta.Duration,

		MPAA:      mpaa(meta),
		Countries: normList(meta.Countries),

		Directors: creditNames(meta.Directors),
		Genres:    normList(meta.Genres),
		Tags:      normList(meta.Collections),

		Website: strings.TrimSpace(meta.SiteURL),
	}

	for _, c := range m.Tags {
		m.Sets = append(m.Sets, set{Name: c})
	}
	for _, p := range normList(meta.Posters) {
		m.Thumbs = append(m.Thumbs, thumb{Aspect: "poster", URL: p})
	}
	if art := normList(meta.Art); len(art) > 0 {
		m.Fanart = &fanart{}
		for _, a := range art {
			m.Fanart.Thumbs = append(m.Fanart.Thumbs, thumb{URL: a})
		}
	}
	if meta.Rating > 0 {
		r := meta.Rating
		m.Rating = &r
	}
	for i, c := range meta.Cast {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		m.Actors = append(m.Actors, actor{Name: name, Role: strings.TrimSpace(c.Role), Order: i, Thumb: strings.TrimSpace(c.Photo)})
	}

	b, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"
	return append([]byte(header), b...), nil
}

func mpaa(meta domain.Metadata) string {
	r := strings.TrimSpace(meta.ContentRating)
	if r == "" {
		return ""
	}
	if meta.ContentRatingAge > 0 {
		return r + " " + strconv.Itoa(meta.ContentRatingAge) + "+"
	}
	return r
}

func creditNames(cs []domain.Credit) []string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.Name)
	}
	return normList(names)
}

func normList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
