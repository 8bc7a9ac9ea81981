package registry

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
)

var (
	yearRE      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	minutesRE   = regexp.MustCompile(`\d+`)
	titleYearRE = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
)

func parseTitleResults(body []byte, base string) ([]filmRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// 没有结果时 IAFD 不输出表格。
	var rows []filmRow
	doc.Find("table#titleresult").Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		a := cells.Eq(0).Find("a").First()
		href, _ := a.Attr("href")
		title := clean(a.Text())
		if title == "" || href == "" {
			return
		}
		rows = append(rows, filmRow{
			Title:       title,
			URL:         httpx.ResolveURL(base, href),
			Year:        atoiYear(cells.Eq(1).Text()),
			Studio:      clean(cells.Eq(2).Text()),
			Distributor: clean(cells.Eq(3).Text()),
		})
	})
	return rows, nil
}

func parseFilmPage(body []byte, base string) (*domain.RegistryMatch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	m := &domain.RegistryMatch{}
	h1 := clean(doc.Find("h1").First().Text())
	if y := titleYearRE.FindString(h1); y != "" {
		m.Year = atoiYear(y)
		h1 = strings.TrimSpace(strings.TrimSuffix(h1, y))
	}
	m.Title = h1

	doc.Find("p.bioheading").Each(func(_ int, h *goquery.Selection) {
		data := h.NextFiltered("p.biodata")
		switch strings.ToLower(clean(h.Text())) {
		case "minutes":
			if s := minutesRE.FindString(data.Text()); s != "" {
				m.Duration, _ = strconv.Atoi(s)
			}
		case "studio":
			m.Studio = clean(data.Text())
		case "distributor":
			if m.Studio == "" {
				m.Studio = clean(data.Text())
			}
		case "compilation":
			m.Compilation = strings.EqualFold(clean(data.Text()), "yes")
		case "director", "directors":
			m.Directors = append(m.Directors, parseDirectors(data, base)...)
		}
	})

	var syn []string
	doc.Find("#synopsis li, #synopsis p").Each(func(_ int, s *goquery.Selection) {
		if t := clean(s.Text()); t != "" {
			syn = append(syn, t)
		}
	})
	m.Synopsis = strings.Join(syn, "\n")

	doc.Find("div.castbox").Each(func(_ int, box *goquery.Selection) {
		var name, href string
		box.Find("a").Each(func(_ int, a *goquery.Selection) {
			if t := clean(a.Text()); t != "" {
				name = t
				href, _ = a.Attr("href")
			}
		})
		if name == "" {
			return
		}
		photo, _ := box.Find("img").First().Attr("src")
		m.Performers = append(m.Performers, domain.Performer{
			Name:  name,
			URL:   httpx.ResolveURL(base, href),
			Photo: httpx.ResolveURL(base, photo),
			Role:  clean(box.Find("i").First().Text()),
		})
	})

	if m.Title == "" && m.Duration == 0 && len(m.Performers) == 0 {
		return nil, errors.New("影片页缺少标题/时长/演员，页面结构可能已变化")
	}
	return m, nil
}

func parseDirectors(data *goquery.Selection, base string) []domain.Performer {
	var out []domain.Performer
	anchors := data.Find("a")
	if anchors.Length() > 0 {
		anchors.Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if name := clean(a.Text()); name != "" {
				out = append(out, domain.Performer{Name: name, URL: httpx.ResolveURL(base, href)})
			}
		})
		return out
	}
	for _, name := range strings.Split(data.Text(), ",") {
		name = clean(name)
		if name == "" || strings.Contains(strings.ToLower(name), "no director") {
			continue
		}
		out = append(out, domain.Performer{Name: name})
	}
	return out
}

func parsePeopleResults(body []byte, base string, role Role) ([]domain.Performer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	sel := "table#tblMal tbody tr, table#tblFem tbody tr"
	if role == RoleDirector {
		sel = "table#tblDir tbody tr"
	}

	var out []domain.Performer
	doc.Find(sel).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		a := cells.Eq(1).Find("a").First()
		name := clean(a.Text())
		if name == "" {
			return
		}
		href, _ := a.Attr("href")
		photo, _ := cells.Eq(0).Find("img").First().Attr("src")
		var aliases []string
		for _, s := range strings.Split(cells.Eq(2).Text(), ",") {
			if s = clean(s); s != "" {
				aliases = append(aliases, s)
			}
		}
		out = append(out, domain.Performer{
			Name:    name,
			URL:     httpx.ResolveURL(base, href),
			Photo:   httpx.ResolveURL(base, photo),
			Aliases: aliases,
		})
	})
	return out, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func atoiYear(s string) int {
	y, _ := strconv.Atoi(yearRE.FindString(s))
	return y
}
