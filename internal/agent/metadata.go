package agent

import (
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/resolve"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

const releasedLayout = "2006-01-02"

// metadata 把合并后的记录转换为宿主字段。厂牌/片名始终取文件名，文件名没有厂牌时才用站点的。
func metadata(r domain.FilmRecord, siteStudio string) domain.Metadata {
	studio := r.Expect.Studio
	if studio == "" {
		studio = firstNonEmpty(siteStudio, r.SiteStudio)
	}
	md := domain.Metadata{
		Studio:           studio,
		Title:            r.Expect.Title,
		Tagline:          r.SiteURL,
		Duration:         r.Duration,
		SiteURL:          r.SiteURL,
		SortTitle:        textnorm.Title(r.Expect.Title),
		ContentRating:    domain.ContentRating,
		ContentRatingAge: domain.ContentRatingAge,
		Collections:      nonNil(r.Collections),
		Genres:           nonNil(r.Genres),
		Countries:        nonNil(r.Countries),
		Posters:          nonNil(r.Posters),
		Art:              nonNil(r.Art),
		Rating:           r.Rating,
		Directors:        append([]domain.Credit{}, r.Directors...),
		Cast:             make([]domain.Credit, 0, len(r.Cast)),
	}
	if !r.CompareDate.IsZero() {
		md.Released = r.CompareDate.Format(releasedLayout)
		md.Year = r.CompareDate.Year()
	} else {
		md.Year = r.Expect.Year
	}
	for _, c := range r.Cast {
		c.Role = resolve.DisplayRole(c)
		md.Cast = append(md.Cast, c)
	}
	return md
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return append([]string(nil), ss...)
}
