// Package waybig 实现 WayBig 的搜索列表与详情页解析。
package waybig

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
	"github.com/John-Robertt/filmmatch/internal/match"
	"github.com/John-Robertt/filmmatch/internal/site"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

const (
	Name           = "waybig"
	DefaultBaseURL = "https://www.waybig.com"

	// WayBig 对超过 50 个字符的搜索串返回空结果。
	queryMaxLen = 50
	dateLayout  = "January 2, 2006"
)

// 标签里这些词不是演员名。
var ignoreCast = []string{"British", "Furry", "Hairy", "Hawaiian", "Solo", "U.K", "United Kingdom"}

var (
	quoteFix   = textnorm.R("[`‘’]", "'")
	watchAtRE  = regexp.MustCompile(`(?i)Watch.*at.*`)
	endQuoteRE = regexp.MustCompile(`['"]$`)

	// 列表条目的厂牌/片名拆分规则，按顺序尝试。
	atRE    = regexp.MustCompile(`(?i)^(.+)\s+at\s+(.+)$`)
	colonRE = regexp.MustCompile(`^(.+?):\s+(.+)$`)
	onRE    = regexp.MustCompile(`(?i)^(.+)\s+on\s+(.+)$`)
	askRE   = regexp.MustCompile(`^(.+?)\?\s+(.+)$`)
	commaRE = regexp.MustCompile(`^(.+?),\s+(.+)$`)
)

// Site 是 WayBig 站点。
type Site struct {
	BaseURL string
	Fetcher site.Fetcher
}

var _ site.Site = (*Site)(nil)

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

// Query 构造 WayBig 搜索串：小写、" - " 改为 ": "、去掉含引号的词、去变音符号、截断到 50 个字符。
func Query(title string) string {
	rules := append(append([]textnorm.Rule{}, textnorm.QuoteRules...), textnorm.DropQuotedWords...)
	return textnorm.Fold(textnorm.Query(strings.ToLower(title), queryMaxLen, rules...))
}

func (s *Site) searchURL(exp domain.Expectation, page int) string {
	q := url.QueryEscape(Query(exp.SearchTitle))
	if page <= 1 {
		return s.baseURL() + "/blog/index.php?s=" + q
	}
	return s.baseURL() + "/blog/page/" + strconv.Itoa(page) + "/?s=" + q
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
	doc.Find("div.row div.content-col article").Each(func(_ int, art *goquery.Selection) {
		entry := site.Clean(art.Find("a h2.entry-title").First().Text())
		href, _ := art.Find("a[rel='bookmark']").First().Attr("href")
		if entry == "" || href == "" {
			return
		}
		studio, title, ok := SplitEntry(entry, exp)
		if !ok {
			return
		}
		c := domain.Candidate{
			Site:        Name,
			URL:         httpx.ResolveURL(s.baseURL()+"/", href),
			Title:       title,
			Studio:      studio,
			DateLayouts: []string{dateLayout},
		}
		if d := site.Clean(art.Find("span.meta-date strong").First().Text()); d != "" {
			c.Dates = []string{d}
		}
		out = append(out, c)
	})
	more := doc.Find("div.nav-links a.next.page-numbers").Length() > 0
	return out, more, nil
}

// SplitEntry 把列表条目（通常是 "Studio: Title" 或 "Title at Studio"）拆成厂牌与片名。
func SplitEntry(entry string, exp domain.Expectation) (studio, title string, ok bool) {
	entry = textnorm.Query(entry, 0, quoteFix)
	lower := strings.ToLower(entry)

	split := func(re *regexp.Regexp, studioFirst bool) (string, string, bool) {
		m := re.FindStringSubmatch(entry)
		if m == nil {
			return "", "", false
		}
		if studioFirst {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), true
	}

	switch {
	case strings.Contains(lower, " at ") && strings.Contains(entry, ": ") && endQuoteRE.MatchString(entry):
		return split(colonRE, true)
	case strings.Contains(lower, " at "):
		return split(atRE, false)
	case strings.Contains(entry, ": "):
		return split(colonRE, true)
	case strings.Contains(lower, " on "):
		return split(onRE, false)
	case strings.Contains(entry, "? "):
		return split(askRE, true)
	case strings.Contains(entry, ", "):
		return split(commaRE, true)
	case exp.Studio != "" && strings.Contains(lower, strings.ToLower(exp.Studio)):
		// 条目缺少分隔符：厂牌取文件名的；片名只有在条目里出现时才采用。
		if strings.Contains(lower, strings.ToLower(exp.Title)) {
			return exp.Studio, exp.Title, true
		}
		return exp.Studio, "", true
	default:
		return "", "", false
	}
}

func (s *Site) Fetch(ctx context.Context, pageURL string, exp domain.Expectation) (domain.SiteFields, error) {
	if s.Fetcher == nil {
		return domain.SiteFields{}, errors.New("fetcher 不能为空")
	}
	body, err := s.Fetcher.Get(ctx, Name, pageURL)
	if err != nil {
		return domain.SiteFields{}, &domain.FetchError{Source: Name, Stage: "fetch", URL: pageURL, Err: err}
	}
	f, err := Parse(body, pageURL, exp)
	if err != nil {
		return domain.SiteFields{}, &domain.FetchError{Source: Name, Stage: "parse", URL: pageURL, Err: err}
	}
	return f, nil
}

// Parse 解析详情页：演员来自标签、海报/背景来自正文前两张图、简介来自正文段落。
func Parse(html []byte, pageURL string, exp domain.Expectation) (domain.SiteFields, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.SiteFields{}, err
	}
	var f domain.SiteFields

	f.Title = site.Clean(doc.Find("h1.entry-title").First().Text())
	if d := site.Clean(doc.Find("span.meta-date strong").First().Text()); d != "" {
		if t, _, ok := match.ParseDate(d, []string{dateLayout}); ok {
			f.ReleaseDate = t
		}
	}

	var tags []string
	doc.Find("a[href*='/blog/tag/']").Each(func(_ int, a *goquery.Selection) {
		tags = append(tags, a.Text())
	})
	f.Cast = castFromTags(tags, exp)

	var images []string
	doc.Find("a[target='_self'] img, a[target='_blank'] img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		_, hasAlt := img.Attr("alt")
		_, hasH := img.Attr("height")
		_, hasW := img.Attr("width")
		if !hasAlt || (!hasH && !hasW) || !strings.Contains(src, "/reviews") {
			return
		}
		images = append(images, strings.Replace(httpx.ResolveURL(pageURL, src), ".webp", ".jpg", 1))
	})
	if len(images) == 1 {
		images = append(images, images[0])
	}
	if len(images) > 0 {
		f.Posters = []string{images[0]}
		f.Art = []string{images[1]}
	}

	var paras []string
	doc.Find("div.entry-content > p").Each(func(_ int, p *goquery.Selection) {
		if p.Find("script").Length() > 0 {
			return
		}
		t := site.Clean(p.Text())
		if t == "" || strings.Contains(t, "Watch as") {
			return
		}
		paras = append(paras, t)
	})
	f.Synopsis = strings.TrimSpace(watchAtRE.ReplaceAllString(strings.Join(paras, "\n"), ""))

	if f.Title == "" && len(paras) == 0 && len(images) == 0 {
		return domain.SiteFields{}, errors.New("详情页缺少标题/正文，页面结构可能已变化")
	}
	return f, nil
}

// castFromTags 从标签中挑出演员名：去掉含冒号/域名/厂牌名的标签，只保留每个词都首字母大写的标签。
func castFromTags(tags []string, exp domain.Expectation) []string {
	studioKey := strings.ToLower(strings.ReplaceAll(exp.Studio, " ", ""))
	seen := map[string]struct{}{}
	var out []string
	for _, t := range tags {
		t = site.Clean(strings.ReplaceAll(t, "’s", ""))
		if t == "" || strings.Contains(t, ":") || strings.Contains(exp.Title, t+":") {
			continue
		}
		lt := strings.ToLower(t)
		if strings.Contains(lt, ".tv") || strings.Contains(lt, ".com") || strings.Contains(lt, ".net") {
			continue
		}
		if studioKey != "" && strings.Contains(strings.ReplaceAll(lt, " ", ""), studioKey) {
			continue
		}
		if !capitalised(t) || ignored(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func capitalised(s string) bool {
	for _, w := range strings.Fields(s) {
		first, n := utf8.DecodeRuneInString(w)
		second, _ := utf8.DecodeRuneInString(w[n:])
		if !unicode.IsUpper(first) || !(unicode.IsLower(second) || second == '\'') {
			return false
		}
	}
	return true
}

func ignored(s string) bool {
	for _, x := range ignoreCast {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}
