// Package registry 查询 IAFD：按厂牌/片名/年份定位影片，按姓名定位演员与导演。
//
// registry 只用于增强：任何失败都返回 nil + domain.ErrEnrichmentUnavailable，
// 调用方降级为仅站点数据。
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/textnorm"
)

// Source 是 registry 在缓存与错误中的名字。
const Source = "iafd"

// DefaultBaseURL 是 IAFD 的站点根地址。
const DefaultBaseURL = "https://www.iafd.com"

// 搜索串最大长度：IAFD 对过长的搜索串直接返回空结果。
const queryMaxLen = 24

// Role 是人物查询的角色提示。
type Role int

const (
	RoleCast Role = iota
	RoleDirector
)

func (r Role) String() string {
	if r == RoleDirector {
		return "director"
	}
	return "cast"
}

// Fetcher 读取页面正文（通常是 *httpx.Fetcher）。
type Fetcher interface {
	Get(ctx context.Context, source, rawURL string) ([]byte, error)
}

// Client 是 IAFD 客户端。
type Client struct {
	fetcher         Fetcher
	baseURL         string
	logger          *slog.Logger
	titleSimilarity float64
	nameSimilarity  float64
}

// Option 配置 Client。
type Option func(*Client)

// WithBaseURL 覆盖站点根地址（测试或镜像域名）。
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = logging.NewComponentLogger(l, "registry")
		}
	}
}

// WithSimilarity 覆盖片名与人名的相似度阈值；非法值保持默认。
func WithSimilarity(title, name float64) Option {
	return func(c *Client) {
		if title > 0 && title <= 1 {
			c.titleSimilarity = title
		}
		if name > 0 && name <= 1 {
			c.nameSimilarity = name
		}
	}
}

// New 创建 IAFD 客户端。
func New(f Fetcher, opts ...Option) (*Client, error) {
	if f == nil {
		return nil, fmt.Errorf("registry fetcher 不能为空")
	}
	c := &Client{
		fetcher:         f,
		baseURL:         DefaultBaseURL,
		logger:          logging.NewNop(),
		titleSimilarity: domain.DefaultTitleSimilarity,
		nameSimilarity:  domain.DefaultNameSimilarity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) searchURL(query string) string {
	return c.baseURL + "/results.asp?searchtype=comprehensive&searchstring=" + url.QueryEscape(query)
}

// FindFilm 在 IAFD 上查找与期望记录对应的影片，并读取影片页（时长、导演、简介、演员）。
//
// 结果行需要通过片名匹配；期望有年份时年份必须相等；结果行有厂牌时还需要通过厂牌匹配。
// 多行通过时取片名相似度最高的一行。
func (c *Client) FindFilm(ctx context.Context, exp domain.Expectation) (*domain.RegistryMatch, error) {
	title := exp.Title
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrEnrichmentUnavailable
	}
	query := textnorm.Query(title, queryMaxLen, textnorm.QuoteRules...)
	u := c.searchURL(query)

	body, err := c.fetcher.Get(ctx, Source, u)
	if err != nil {
		return nil, c.unavailable("fetch", u, err)
	}
	rows, err := parseTitleResults(body, c.baseURL)
	if err != nil {
		return nil, c.unavailable("parse", u, err)
	}

	best, score := pickFilm(exp, rows, c.titleSimilarity, c.logger)
	if best == nil {
		c.logger.Info("registry 未找到影片", logging.String("title", title), logging.String("query", query), logging.Int("rows", len(rows)))
		return nil, domain.ErrEnrichmentUnavailable
	}
	c.logger.Debug("registry 命中影片", logging.String("title", best.Title), logging.String("url", best.URL), logging.Float64("score", score))

	page, err := c.fetcher.Get(ctx, Source, best.URL)
	if err != nil {
		return nil, c.unavailable("fetch", best.URL, err)
	}
	m, err := parseFilmPage(page, c.baseURL)
	if err != nil {
		return nil, c.unavailable("parse", best.URL, err)
	}
	m.URL = best.URL
	m.FilmID = filmID(best.URL)
	if m.Title == "" {
		m.Title = best.Title
	}
	if m.Year == 0 {
		m.Year = best.Year
	}
	if m.Studio == "" {
		m.Studio = best.Studio
	}
	return m, nil
}

// FindPerformer 按姓名查找人物；姓名比较使用编辑距离，并尝试姓/名互换与别名。
func (c *Client) FindPerformer(ctx context.Context, name string, role Role) (*domain.Performer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEnrichmentUnavailable
	}
	u := c.searchURL(textnorm.Query(name, 0, textnorm.QuoteRules...))

	body, err := c.fetcher.Get(ctx, Source, u)
	if err != nil {
		return nil, c.unavailable("fetch", u, err)
	}
	people, err := parsePeopleResults(body, c.baseURL, role)
	if err != nil {
		return nil, c.unavailable("parse", u, err)
	}

	p, score := pickPerson(name, people)
	if p == nil || score < c.nameSimilarity {
		c.logger.Debug("registry 未找到人物", logging.String("name", name), logging.String("role", role.String()), logging.Float64("best", score))
		return nil, domain.ErrEnrichmentUnavailable
	}
	c.logger.Debug("registry 命中人物", logging.String("name", name), logging.String("match", p.Name), logging.Float64("score", score))
	out := *p
	return &out, nil
}

func (c *Client) unavailable(stage, u string, err error) error {
	fe := &domain.FetchError{Source: Source, Stage: stage, URL: u, Err: err}
	c.logger.Warn("registry 查询失败", logging.String("stage", stage), logging.String("url", u), logging.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrEnrichmentUnavailable, fe)
}

// filmID 取 IAFD 链接中 id= 之后的部分；没有时退回完整 URL。
func filmID(u string) string {
	if i := strings.LastIndex(u, "id="); i >= 0 {
		return strings.TrimSuffix(u[i+3:], "/")
	}
	return u
}
