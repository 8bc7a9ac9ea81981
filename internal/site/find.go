package site

import (
	"context"
	"errors"
	"log/slog"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/match"
)

// DefaultMaxPages 是每个站点最多翻的页数。
const DefaultMaxPages = 10

// Attempt 记录一次失败的站点操作（用于解释为什么没有结果）。
type Attempt struct {
	Site  string
	Stage string // "search" / "expand"
	URL   string
	Err   error
}

// Match 是第一个通过全部匹配器的候选。
type Match struct {
	Site      Site
	Candidate domain.Candidate
	Verdict   match.Verdict
}

type FindOptions struct {
	MaxPages int
	Logger   *slog.Logger
}

// Find 按站点顺序逐页搜索，返回第一个被完全接受的候选（先到先得，不比较优劣）。
//
// 候选级失败（展开失败、匹配拒绝）只记日志并继续；某个站点搜索失败则换下一个站点。
// 一个候选都没评估过且存在抓取失败时返回该失败（*domain.FetchError），否则返回 domain.ErrNoMatch。
func Find(ctx context.Context, sites []Site, exp domain.Expectation, p domain.Prefs, opts FindOptions) (Match, []Attempt, error) {
	log := logging.Or(opts.Logger)
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var (
		attempts  []Attempt
		lastErr   error
		evaluated int
	)
	for _, s := range sites {
		name := s.Name()
		for page := 1; page <= maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return Match{}, attempts, err
			}
			cands, more, err := s.Search(ctx, exp, page)
			if err != nil {
				if ctx.Err() != nil {
					return Match{}, attempts, ctx.Err()
				}
				lastErr = asFetchError(name, "search", err)
				attempts = append(attempts, Attempt{Site: name, Stage: "search", Err: err})
				log.Warn("站点搜索失败", logging.String("site", name), logging.Int("page", page), logging.Error(err))
				break
			}
			log.Debug("站点搜索结果", logging.String("site", name), logging.Int("page", page), logging.Int("candidates", len(cands)))

			for _, c := range cands {
				evaluated++
				if c.Partial {
					// 先用列表页已有的片名/日期过滤，避免为明显不符的候选读取详情页。
					if r := prefilter(exp, c, p); !r.Accepted() {
						log.Debug("候选被拒绝", logging.String("site", name), logging.String("url", c.URL), logging.String("reason", r.String()))
						continue
					}
					if ex, ok := s.(Expander); ok {
						full, err := ex.Expand(ctx, c)
						if err != nil {
							attempts = append(attempts, Attempt{Site: name, Stage: "expand", URL: c.URL, Err: err})
							log.Warn("读取候选详情失败", logging.String("site", name), logging.String("url", c.URL), logging.Error(err))
							continue
						}
						c = full
					}
				}
				v := match.Candidate(exp, c, p)
				if v.Accepted() {
					log.Debug("候选通过匹配", logging.String("site", name), logging.String("url", c.URL), logging.Float64("score", v.Score))
					return Match{Site: s, Candidate: c, Verdict: v}, attempts, nil
				}
				log.Debug("候选被拒绝",
					logging.String("site", name),
					logging.String("url", c.URL),
					logging.String("title", c.Title),
					logging.String("reason", v.Rejection.String()),
				)
			}
			if !more {
				break
			}
		}
	}

	if evaluated == 0 && lastErr != nil {
		return Match{}, attempts, lastErr
	}
	return Match{}, attempts, domain.ErrNoMatch
}

func prefilter(exp domain.Expectation, c domain.Candidate, p domain.Prefs) match.Result {
	if r := match.Title(exp, c, p.TitleSimilarity); !r.Accepted() {
		return r
	}
	return match.Date(exp, c)
}

func asFetchError(name, stage string, err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &domain.FetchError{Source: name, Stage: stage, Err: err}
}
