// Package agent 提供宿主调用的两个操作：Search（文件 -> 不透明 ID）与 Update（ID -> 最终元数据）。
//
// 引擎在两次调用之间不持有状态：search 得到的 FilmRecord 整体编码进 ID，由宿主原样带回 update。
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/filename"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/match"
	"github.com/John-Robertt/filmmatch/internal/merge"
	"github.com/John-Robertt/filmmatch/internal/resolve"
	"github.com/John-Robertt/filmmatch/internal/site"
)

// 手动搜索放宽标题阈值，但不低于 manualSimilarityFloor。
const (
	manualSimilarityDrop  = 0.15
	manualSimilarityFloor = 0.6
)

// FilmFinder 在 registry 上查找影片（通常是 *registry.Client）。
type FilmFinder interface {
	FindFilm(ctx context.Context, exp domain.Expectation) (*domain.RegistryMatch, error)
}

// Request 是一次 search 的输入。
type Request struct {
	Path   string
	Lang   string
	Manual bool
	// Duration 由宿主从媒体文件读取（分钟）；0 表示未知。
	Duration int
}

// SearchResult 是 search 的唯一结果（先到先得，不返回候选列表）。
type SearchResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Year  int    `json:"year,omitempty"`
	Score int    `json:"score"`
	Site  string `json:"site"`
	URL   string `json:"url"`

	// Enriched 表示 registry 上找到了该影片。
	Enriched bool `json:"enriched"`
}

type Options struct {
	// Sites 按搜索顺序排列。
	Sites      []site.Site
	// Films 为 nil 表示禁用 registry 影片查询。
	Films      FilmFinder
	// People 为 nil 表示不查询 registry 人物（只使用影片页已有的人物）。
	People     resolve.PerformerFinder
	Translator Translator
	Prefs      domain.Prefs
	MaxPages   int
	Logger     *slog.Logger
}

type Agent struct {
	order      []site.Site
	sites      site.Registry
	films      FilmFinder
	resolver   *resolve.Resolver
	translator Translator
	prefs      domain.Prefs
	maxPages   int
	logger     *slog.Logger
}

func New(opts Options) (*Agent, error) {
	if len(opts.Sites) == 0 {
		return nil, errors.New("至少需要一个站点")
	}
	reg, err := site.NewRegistry(opts.Sites...)
	if err != nil {
		return nil, err
	}
	log := logging.NewComponentLogger(logging.Or(opts.Logger), "agent")
	tr := opts.Translator
	if tr == nil {
		tr = Identity{}
	}
	return &Agent{
		order:      append([]site.Site(nil), opts.Sites...),
		sites:      reg,
		films:      opts.Films,
		resolver:   resolve.New(opts.People, opts.Prefs, resolve.WithLogger(opts.Logger)),
		translator: tr,
		prefs:      opts.Prefs,
		maxPages:   opts.MaxPages,
		logger:     log,
	}, nil
}

// Search 解析文件名，按站点顺序找到第一个通过全部匹配器的候选，再到 registry 查找影片。
//
// 文件名不符合约定返回 *domain.ParseError；没有候选通过返回 domain.ErrNoMatch；
// 所有站点都抓取失败时返回 *domain.FetchError。
func (a *Agent) Search(ctx context.Context, req Request) (*SearchResult, error) {
	log := a.logger.With(logging.RequestID(uuid.NewString()), logging.String("path", req.Path))

	exp, err := filename.Parse(req.Path, filename.OptionsFromPrefs(a.prefs, req.Duration))
	if err != nil {
		log.Warn("文件名解析失败", logging.Error(err))
		return nil, err
	}
	log.Debug("期望记录",
		logging.String("studio", exp.Studio),
		logging.String("title", exp.Title),
		logging.String("compare_studio", exp.CompareStudio),
		logging.String("compare_title", exp.CompareTitle),
		logging.Int("year", exp.Year),
		logging.Strings("cast", exp.Cast),
	)

	q, p := exp, a.prefs
	if req.Manual {
		q.Year = 0
		p.TitleSimilarity = manualSimilarity(p.TitleSimilarity)
	}

	m, attempts, err := site.Find(ctx, a.order, q, p, site.FindOptions{MaxPages: a.maxPages, Logger: log})
	if err != nil {
		log.Info("没有匹配的候选", logging.Int("failed_attempts", len(attempts)), logging.Error(err))
		return nil, err
	}

	rec := domain.NewFilmRecord(exp)
	rec.Site = m.Site.Name()
	rec.SiteURL = m.Candidate.URL
	rec.SiteTitle = m.Candidate.Title
	rec.SiteStudio = m.Candidate.Studio
	rec.Duration = m.Candidate.Duration
	if !m.Verdict.Date.IsZero() {
		rec.CompareDate = m.Verdict.Date
		rec.DateResolved = true
	}

	film, err := a.findFilm(ctx, log, exp)
	if err != nil {
		log.Info("registry 时长不符，放弃候选", logging.String("url", rec.SiteURL), logging.Error(err))
		return nil, err
	}
	rec.Registry = film

	id, err := domain.EncodeID(rec)
	if err != nil {
		return nil, err
	}
	log.Info("匹配成功",
		logging.String("site", rec.Site),
		logging.String("url", rec.SiteURL),
		logging.Float64("score", m.Verdict.Score),
		logging.Bool("registry", film != nil),
	)
	return &SearchResult{
		ID:    id,
		Name:  exp.Title,
		Year:  yearOf(rec),
		Score: int(math.Round(m.Verdict.Score * 100)),
		Site:  rec.Site,
		URL:   rec.SiteURL,

		Enriched: film != nil,
	}, nil
}

// findFilm 查找 registry 影片。查不到时降级为仅站点数据；
// 启用 registry 时长比较时，只有 registry 给出了答复（没有该影片或时长不符）才视为没有匹配，
// 网络/解析失败一律降级。
func (a *Agent) findFilm(ctx context.Context, log *slog.Logger, exp domain.Expectation) (*domain.RegistryMatch, error) {
	if a.films == nil {
		return nil, nil
	}
	film, err := a.films.FindFilm(ctx, exp)
	if err != nil {
		if domain.IsFetchError(err) {
			log.Warn("registry 查询失败，降级为仅站点数据", logging.Error(err))
			return nil, nil
		}
		log.Info("registry 上没有该影片", logging.String("title", exp.Title), logging.Error(err))
		film = nil
	}
	if !a.prefs.MatchAgainstRegistryDuration {
		return film, nil
	}
	actual := 0
	if film != nil {
		actual = film.Duration
	}
	if r := match.Duration(exp, actual, a.prefs.DurationToleranceMinutes, "registry"); !r.Accepted() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoMatch, r)
	}
	return film, nil
}

// Update 解码 ID，读取命中的站点页面，解析演员/导演并合并出最终元数据。
// 站点页面读取失败返回错误；registry 相关失败只会让结果缺少头像/角色。
func (a *Agent) Update(ctx context.Context, id, lang string) (domain.Metadata, error) {
	rec, err := domain.DecodeID(id)
	if err != nil {
		return domain.Metadata{}, err
	}
	log := a.logger.With(logging.String("site", rec.Site), logging.String("url", rec.SiteURL))

	s, ok := a.sites.Get(rec.Site)
	if !ok {
		return domain.Metadata{}, fmt.Errorf("未知站点：%q", rec.Site)
	}
	fields, err := s.Fetch(ctx, rec.SiteURL, rec.Expect)
	if err != nil {
		log.Warn("读取站点详情失败", logging.Error(err))
		return domain.Metadata{}, err
	}

	film := rec.Registry
	rec.Cast = a.resolver.Cast(ctx, rec.Expect, fields.Cast, film)
	rec.Directors = a.resolver.Directors(ctx, fields.Directors, film)

	out := merge.Merge(rec, fields, film, a.prefs)
	out.Legend = resolve.Legend(film)

	synopsis, err := a.translator.Translate(ctx, out.Synopsis, lang, a.prefs.SummaryLanguageDetect)
	if err != nil {
		log.Warn("简介翻译失败，使用原文", logging.String("lang", lang), logging.Error(err))
		synopsis = out.Synopsis
	}

	md := metadata(out, fields.Studio)
	md.Summary = merge.Summary(out.Legend, synopsis, a.prefs.LegendPlacement)
	log.Debug("元数据已生成",
		logging.Int("cast", len(md.Cast)),
		logging.Int("directors", len(md.Directors)),
		logging.Int("collections", len(md.Collections)),
	)
	return md, nil
}

func manualSimilarity(t float64) float64 {
	return max(t-manualSimilarityDrop, manualSimilarityFloor)
}

func yearOf(r domain.FilmRecord) int {
	if !r.CompareDate.IsZero() {
		return r.CompareDate.Year()
	}
	return r.Expect.Year
}
