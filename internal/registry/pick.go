package registry

import (
	"log/slog"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/match"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

// filmRow 是 IAFD 搜索结果中的一行影片。
type filmRow struct {
	Title       string
	URL         string
	Year        int
	Studio      string
	Distributor string
}

func pickFilm(exp domain.Expectation, rows []filmRow, threshold float64, log *slog.Logger) (*filmRow, float64) {
	var (
		best  *filmRow
		score float64
	)
	for i := range rows {
		r := &rows[i]
		if exp.HasYear() && r.Year != exp.Year {
			log.Debug("registry 行年份不符", logging.String("title", r.Title), logging.Int("year", r.Year))
			continue
		}
		tr := match.Title(exp, domain.Candidate{Site: Source, URL: r.URL, Title: r.Title, Studio: r.Studio}, threshold)
		if !tr.Accepted() {
			log.Debug("registry 行片名不符", logging.String("title", r.Title), logging.String("reason", tr.Reason))
			continue
		}
		var studios []string
		for _, s := range []string{r.Studio, r.Distributor} {
			if strings.TrimSpace(s) != "" {
				studios = append(studios, s)
			}
		}
		if len(studios) > 0 {
			if sr := match.AnyStudio(exp, studios); !sr.Accepted() {
				log.Debug("registry 行厂牌不符", logging.String("title", r.Title), logging.String("reason", sr.Reason))
				continue
			}
		}
		if best == nil || tr.Score > score {
			best, score = r, tr.Score
		}
	}
	return best, score
}

// pickPerson 返回相似度最高的人物（相同得分取先出现者）。
func pickPerson(name string, people []domain.Performer) (*domain.Performer, float64) {
	var (
		best  *domain.Performer
		score float64
	)
	for i := range people {
		if s := NameScore(name, people[i]); best == nil || s > score {
			best, score = &people[i], s
		}
	}
	return best, score
}

// NameScore 比较姓名与 registry 人物（含别名），并尝试姓/名互换。
func NameScore(name string, p domain.Performer) float64 {
	want := textnorm.Normalize(name)
	if want == "" {
		return 0
	}
	best := 0.0
	for _, n := range append([]string{p.Name}, p.Aliases...) {
		got := textnorm.Normalize(n)
		if got == "" {
			continue
		}
		best = max(best, match.Similarity(want, got), match.Similarity(want, swapNameOrder(got)))
	}
	return best
}

// swapNameOrder 把最后一个词移到最前（"doe john" <-> "john doe"）。
func swapNameOrder(s string) string {
	words := strings.Fields(s)
	if len(words) < 2 {
		return s
	}
	last := words[len(words)-1]
	return last + " " + strings.Join(words[:len(words)-1], " ")
}
