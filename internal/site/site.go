// Package site 定义目录站点的统一接口，以及“按顺序逐站逐页找第一个通过匹配的候选”的驱动。
package site

import (
	"context"
	"fmt"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// Fetcher 读取页面正文（通常是 *httpx.Fetcher：缓存、限速、重试都在那一层）。
type Fetcher interface {
	Get(ctx context.Context, source, rawURL string) ([]byte, error)
}

// Site 把“站点变化”限制在各站点包内部；核心流程只依赖统一接口与 domain 类型。
//
// 约束：
// - Search 只解析列表页，不做匹配判断；page 从 1 开始，more 表示还有下一页
// - Fetch 读取详情页；exp 只用于过滤站点噪音（例如把厂牌名当作标签）
type Site interface {
	Name() string
	Search(ctx context.Context, exp domain.Expectation, page int) (cands []domain.Candidate, more bool, err error)
	Fetch(ctx context.Context, pageURL string, exp domain.Expectation) (domain.SiteFields, error)
}

// Expander 由列表页缺少厂牌/日期的站点实现：读取详情页补全候选。
type Expander interface {
	Expand(ctx context.Context, cand domain.Candidate) (domain.Candidate, error)
}

// Registry 是站点的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Site
}

func NewRegistry(sites ...Site) (Registry, error) {
	byName := make(map[string]Site, len(sites))
	for _, s := range sites {
		if s == nil {
			return Registry{}, fmt.Errorf("site 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(s.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("site.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 site：%q", name)
		}
		byName[name] = s
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Site, bool) {
	if r.byName == nil {
		return nil, false
	}
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Ordered 按给定顺序返回站点；未注册的名字直接报错。
func (r Registry) Ordered(names []string) ([]Site, error) {
	out := make([]Site, 0, len(names))
	for _, n := range names {
		s, ok := r.Get(n)
		if !ok {
			return nil, fmt.Errorf("site 未注册：%q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

// Clean 折叠空白。
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
