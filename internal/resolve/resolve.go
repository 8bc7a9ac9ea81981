// Package resolve 把演员/导演姓名解析为带头像与角色的条目。
package resolve

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/logging"
	"github.com/John-Robertt/filmmatch/internal/registry"
)

const defaultMemoSize = 512

// PerformerFinder 是 registry 的人物查询（通常是 *registry.Client）。
type PerformerFinder interface {
	FindPerformer(ctx context.Context, name string, role registry.Role) (*domain.Performer, error)
}

// Resolver 解析姓名列表；同一批次内的人物查询结果会被缓存。
type Resolver struct {
	finder         PerformerFinder
	placeholder    string
	nameSimilarity float64
	memo           *lru.Cache[string, *domain.Performer]
	logger         *slog.Logger
}

type Option func(*Resolver)

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = logging.NewComponentLogger(l, "resolve")
		}
	}
}

// New 创建 Resolver；finder 为 nil 表示不查询 registry（只使用影片页已有的人物）。
func New(finder PerformerFinder, p domain.Prefs, opts ...Option) *Resolver {
	memo, _ := lru.New[string, *domain.Performer](defaultMemoSize)
	r := &Resolver{
		finder:         finder,
		placeholder:    p.PlaceholderPhoto,
		nameSimilarity: p.NameSimilarity,
		memo:           memo,
		logger:         logging.NewNop(),
	}
	if r.placeholder == "" {
		r.placeholder = domain.DefaultPlaceholderPhoto
	}
	if r.nameSimilarity <= 0 || r.nameSimilarity > 1 {
		r.nameSimilarity = domain.DefaultNameSimilarity
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cast 解析演员表。
//
// 文件名里的演员表非空时是唯一权威名单（站点只用来补头像/角色）；否则以站点名单为准；
// 两者都为空时退回 registry 影片页的演员。registry 查不到的人保留为占位条目，不会被丢弃。
// 输出按姓名排序。
func (r *Resolver) Cast(ctx context.Context, exp domain.Expectation, siteNames []string, film *domain.RegistryMatch) []domain.Credit {
	names := exp.Cast
	if len(names) == 0 {
		names = siteNames
	}
	var known []domain.Performer
	if film != nil {
		known = film.Performers
		if len(names) == 0 {
			for _, p := range known {
				names = append(names, p.Name)
			}
		}
	}
	return r.resolve(ctx, Dedup(names), known, registry.RoleCast)
}

// Directors 解析导演；站点没有导演时退回 registry 影片页的导演。
func (r *Resolver) Directors(ctx context.Context, siteNames []string, film *domain.RegistryMatch) []domain.Credit {
	names := siteNames
	var known []domain.Performer
	if film != nil {
		known = film.Directors
		if len(names) == 0 {
			for _, p := range known {
				names = append(names, p.Name)
			}
		}
	}
	return r.resolve(ctx, Dedup(names), known, registry.RoleDirector)
}

func (r *Resolver) resolve(ctx context.Context, names []string, known []domain.Performer, role registry.Role) []domain.Credit {
	out := make([]domain.Credit, 0, len(names))
	for _, name := range names {
		c := r.resolveOne(ctx, name, known, role)
		r.logger.Debug("解析人物",
			logging.String("name", name),
			logging.String("role", role.String()),
			logging.String("status", c.Status),
		)
		out = append(out, c)
	}
	SortCredits(out)
	return out
}

func (r *Resolver) resolveOne(ctx context.Context, name string, known []domain.Performer, role registry.Role) domain.Credit {
	if p := r.fromFilm(name, known); p != nil {
		return r.credit(name, p, role)
	}
	if p := r.lookup(ctx, name, role); p != nil {
		return r.credit(name, p, role)
	}
	c := domain.Credit{Name: name, Photo: r.placeholder, Status: domain.CreditUnresolved}
	if role == registry.RoleCast {
		c.Role = domain.RoleUnknown
	}
	return c
}

func (r *Resolver) fromFilm(name string, known []domain.Performer) *domain.Performer {
	var (
		best  *domain.Performer
		score float64
	)
	for i := range known {
		if s := registry.NameScore(name, known[i]); s > score {
			best, score = &known[i], s
		}
	}
	if best == nil || score < r.nameSimilarity {
		return nil
	}
	return best
}

func (r *Resolver) lookup(ctx context.Context, name string, role registry.Role) *domain.Performer {
	if r.finder == nil {
		return nil
	}
	key := role.String() + "|" + strings.ToLower(name)
	if p, ok := r.memo.Get(key); ok {
		return p
	}
	p, err := r.finder.FindPerformer(ctx, name, role)
	if err != nil {
		if domain.IsFetchError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// 网络类失败不缓存，后续文件可以重试。
			return nil
		}
		p = nil
	}
	r.memo.Add(key, p)
	return p
}

func (r *Resolver) credit(name string, p *domain.Performer, role registry.Role) domain.Credit {
	c := domain.Credit{Name: name, Photo: p.Photo, URL: p.URL, Status: domain.CreditRegistry}
	if c.Photo == "" {
		c.Photo = r.placeholder
	}
	if role == registry.RoleCast {
		c.Role = domain.RoleUnknown
		if strings.TrimSpace(p.Role) != "" {
			c.Role = strings.TrimSpace(p.Role)
			c.Status = domain.CreditVerified
		}
	}
	return c
}

// Dedup 按大小写不敏感去重，保留第一次出现的写法与顺序。
func Dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		k := strings.ToLower(n)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SortCredits 按姓名排序（大小写不敏感，相同时按原文）。
func SortCredits(cs []domain.Credit) {
	slices.SortStableFunc(cs, func(a, b domain.Credit) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
