// Package aventertainments 实现 AVEntertainments 的搜索列表与详情页解析。
//
// 列表页只有片名与日期；厂牌在详情页，因此候选需要 Expand。
package aventertainments

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
	"github.com/John-Robertt/filmmatch/internal/site"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

const (
	Name           = "aventertainments"
	DefaultBaseURL = "https://www.aventertainments.com"

	dateLayout = "01/02/2006"
	// 详情页日期不补零，如 3/1/2020。
	detailDateLayout = "1/2/2006"
)

// 这些分类是商品属性而不是影片类型（整项相等才忽略）。
var ignoreGenres = []string{"3-D", "Blu-ray Disc", "Editor's Pick", "Gay", "Gay - New Release", "HD DVD", "New Release", "Pre Release", "Sample Movies"}

var minutesRE = regexp.MustCompile(`\d+`)

type Site struct {
	BaseURL string
	Fetcher site.Fetcher
}

var (
	_ site.Site     = (*Site)(nil)
	_ site.Expander = (*Site)(nil)
)

func New(f site.Fetcher, baseURL string) *Site {
	return &Site{BaseURL: baseURL, Fetcher: f}
}

func (*Site) Name() string { return Name }

func (s *Site) baseURL() string {
	u := strings.TrimSpace(s.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// Query 构造搜索串：小写、去变音符号、只保留字母数字/撇号/逗号。
func Query(title string) string {
	return strings.ToLower(textnorm.Query(textnorm.Fold(title), 0, textnorm.AlnumOnly...))
}

func (s *Site) searchURL(exp domain.Expectation, page int) string {
	u := s.baseURL() + "/search_products.aspx?Dept_ID=43&keyword=" + url.QueryEscape(Query(exp.SearchTitle)) +
		"&whichOne=all&languageID=1&rows=3&SaveData=3"
	if page > 1 {
		u += "&CountPage=" + strconv.Itoa(page)
	}
	return u
}

func (s *Site) Search(ctx context.Context, exp domain.Expectation, page int) ([]domain.Candidate, bool, error) {
	if s.Fetcher == nil {
		return nil, false, errors.New("fetcher 不能为空")
	}
	u := s.searchURL(exp, page)
	body, err := s.Fetcher.Get(ctx, Name, u)
	if err != nil {
		return nil, false, &domain.FetchError{Source: Name, Stage: "fetch", URL: u, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, &domain.FetchError{Source: Name, Stage: "parse", URL: u, Err: err}
	}

	var out []domain.Candidate
	doc.Find("div.single-slider-product__content").Each(func(_ int, item *goquery.Selection) {
		a := item.Find("p.product-title a").First()
		href, _ := a.Attr("href")
		title, _, _ := strings.Cut(a.Text(), "(")
		title = site.Clean(title)
		if title == "" || href == "" {
			return
		}
		c := domain.Candidate{
			Site:        Name,
			URL:         httpx.ResolveURL(s.baseURL()+"/", href),
			Title:       title,
			DateLayouts: []string{dateLayout},
			Partial:     true,
		}
		item.Find("span.availability-title").Each(func(_ int, sp *goquery.Selection) {
			if t := site.Clean(sp.Text()); t != "" && !strings.Contains(t, "Date:") {
				c.Dates = append(c.Dates, t)
			}
		})
		out = append(out, c)
	})
	more := doc.Find("li a[title='Next']").Length() > 0
	return out, more, nil
}

// Expand 读取详情页补全厂牌（以及列表页缺失的日期与时长）。
func (s *Site) Expand(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	f, err := s.Fetch(ctx, c.URL, domain.Expectation{})
	if err != nil {
		return c, err
	}
	if f.Studio == "" {
		return c, &domain.FetchError{Source: Name, Stage: "parse", URL: c.URL, Err: errors.New("详情页没有厂牌")}
	}
	c.Studio = f.Studio
	if c.Duration == 0 {
		c.Duration = f.Duration
	}
	if len(c.Dates) == 0 && !f.ReleaseDate.IsZero() {
		c.Dates = []string{f.ReleaseDate.Format(dateLayout)}
		c.DateLayouts = []string{dateLayout}
	}
	c.Partial = false
	return c, nil
}

func (s *Site) Fetch(ctx context.Context, pageURL string, _ domain.Expectation) (domain.SiteFields, error) {
	if s.Fetcher == nil {
		return domain.SiteFields{}, errors.New("fetcher 不能为空")
	}
	body, err := s.Fetcher.Get(ctx, Name, pageURL)
	if err != nil {
		return domain.SiteFields{}, &domain.FetchError{Source: Name, Stage: "fetch", URL: pageURL, Err: err}
	}
	f, err := Parse(body, pageURL)
	if err != nil {
		return domain.SiteFields{}, &domain.FetchError{Source: Name, Stage: "parse", URL: pageURL, Err: err}
	}
	return f, nil
}

// Parse 解析详情页的 single-info 信息行、封面与简介。
func Parse(html []byte, pageURL string) (domain.SiteFields, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.SiteFields{}, err
	}
	var f domain.SiteFields

	title, _, _ := strings.Cut(doc.Find("div.section-title h3, h1").First().Text(), "(")
	f.Title = site.Clean(title)

	doc.Find("div.single-info").Each(func(_ int, info *goquery.Selection) {
		label := info.Find("span.title").First()
		values := label.NextAll().Filter("span")
		links := values.Find("a")
		switch site.Clean(label.Text()) {
		case "Studio":
			f.Studio = site.Clean(links.First().Text())
		case "Category":
			links.Each(func(_ int, a *goquery.Selection) {
				g := site.Clean(a.Text())
				if g == "" || ignoredGenre(g) {
					return
				}
				if strings.Contains(strings.ToLower(g), "compilation") {
					f.Compilation = true
				}
				for _, part := range strings.Split(strings.ReplaceAll(g, "Gay - ", ""), " / ") {
					if part = site.Clean(part); part != "" && !ignoredGenre(part) {
						f.Genres = appendUnique(f.Genres, part)
					}
				}
			})
		case "Series":
			links.Each(func(_ int, a *goquery.Selection) {
				if c := site.Clean(a.Text()); c != "" {
					f.Collections = append(f.Collections, c)
				}
			})
		case "Director":
			links.Each(func(_ int, a *goquery.Selection) {
				d := site.Clean(a.Text())
				if d != "" && !strings.Contains(strings.ToUpper(d), "N/A") {
					f.Directors = append(f.Directors, d)
				}
			})
		case "Starring":
			links.Each(func(_ int, a *goquery.Selection) {
				if c := site.Clean(a.Text()); c != "" {
					f.Cast = append(f.Cast, c)
				}
			})
		case "Date", "Release Date":
			if fields := strings.Fields(values.Text()); len(fields) > 0 {
				if d, err := time.Parse(detailDateLayout, fields[0]); err == nil {
					f.ReleaseDate = d
				}
			}
		case "Play Time":
			if m := minutesRE.FindString(values.Text()); m != "" {
				f.Duration, _ = strconv.Atoi(m)
			}
		}
	})

	if href, ok := doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return site.Clean(a.Text()) == "Cover Jacket"
	}).First().Attr("href"); ok && href != "" {
		cover := httpx.ResolveURL(pageURL, href)
		f.Posters = []string{strings.Replace(cover, "bigcover", "jacket_images", 1)}
		f.Art = []string{strings.Replace(cover, "bigcover", "screen_shot", 1)}
	}

	f.Synopsis = strings.TrimSpace(doc.Find("div.product-description").First().Text())

	if f.Title == "" && f.Studio == "" && len(f.Cast) == 0 {
		return domain.SiteFields{}, errors.New("详情页缺少标题/厂牌/演员，页面结构可能已变化")
	}
	return f, nil
}

func ignoredGenre(g string) bool {
	for _, x := range ignoreGenres {
		if strings.EqualFold(g, x) {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, s string) []string {
	for _, d := range dst {
		if strings.EqualFold(d, s) {
			return dst
		}
	}
	return append(dst, s)
}
