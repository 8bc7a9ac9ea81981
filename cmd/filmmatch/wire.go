package main

import (
	"fmt"
	"log/slog"

	"github.com/John-Robertt/filmmatch/internal/agent"
	"github.com/John-Robertt/filmmatch/internal/app/run"
	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/infra/cache"
	"github.com/John-Robertt/filmmatch/internal/infra/fsx"
	"github.com/John-Robertt/filmmatch/internal/infra/httpx"
	"github.com/John-Robertt/filmmatch/internal/media/ffprobe"
	"github.com/John-Robertt/filmmatch/internal/registry"
	"github.com/John-Robertt/filmmatch/internal/site"
	"github.com/John-Robertt/filmmatch/internal/site/aventertainments"
	"github.com/John-Robertt/filmmatch/internal/site/waybig"
)

// newAgent 按生效配置组装 HTTP client、页面缓存、站点、registry 与 agent。
// cacheReadOnly 用于 dry-run：允许读缓存但不写入。
func newAgent(eff config.EffectiveConfig, log *slog.Logger, cacheReadOnly bool) (*agent.Agent, error) {
	client, err := httpx.NewClient(httpx.ClientOptions{
		ProxyURL:     eff.Network.ProxyURL,
		RequestDelay: eff.Network.RequestDelay,
		RetryMax:     eff.Network.RetryMax,
		Timeout:      eff.Network.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("network.proxy_url 无效：%w", err)
	}

	f := &httpx.Fetcher{Client: client, Logger: log}
	if eff.Cache.Dir != "" {
		f.Cache = cache.New(fsx.OS, eff.Cache.Dir, eff.Cache.TTL, cacheReadOnly)
	}

	all, err := site.NewRegistry(
		waybig.New(f, eff.Sites.WayBigBaseURL),
		aventertainments.New(f, eff.Sites.AVEntertainmentsBaseURL),
	)
	if err != nil {
		return nil, err
	}
	sites, err := all.Ordered(eff.Sites.Order)
	if err != nil {
		return nil, err
	}

	opts := agent.Options{
		Sites:  sites,
		Prefs:  eff.Prefs,
		Logger: log,
	}
	if eff.Registry.Enabled {
		reg, err := registry.New(f,
			registry.WithBaseURL(eff.Registry.BaseURL),
			registry.WithLogger(log),
			registry.WithSimilarity(eff.Prefs.TitleSimilarity, eff.Prefs.NameSimilarity),
		)
		if err != nil {
			return nil, err
		}
		opts.Films = reg
		opts.People = reg
	}
	return agent.New(opts)
}

// durationSource 只在启用时长比较时才调用 ffprobe。
func durationSource(eff config.EffectiveConfig) run.DurationSource {
	if !eff.Prefs.MatchAgainstSiteDuration && !eff.Prefs.MatchAgainstRegistryDuration {
		return nil
	}
	return ffprobe.Prober{Binary: eff.Media.FFprobe}
}
