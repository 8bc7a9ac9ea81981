package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// FileConfig 对应 filmmatch.toml 的解析结构。
// 指针字段用于区分“未填写”与“显式填写零值”。
type FileConfig struct {
	Path        string   `toml:"path"`
	Apply       *bool    `toml:"apply"`
	ExcludeDirs []string `toml:"exclude_dirs"`

	Collections struct {
		Cast          *bool `toml:"cast"`
		ClearOnUpdate *bool `toml:"clear_on_update"`
		Country       *bool `toml:"country"`
		Director      *bool `toml:"director"`
		Genre         *bool `toml:"genre"`
		Studio        *bool `toml:"studio"`
		Title         *bool `toml:"title"`
	} `toml:"collections"`

	Match struct {
		DurationToleranceMinutes *int     `toml:"duration_tolerance_minutes"`
		MatchSiteDuration        *bool    `toml:"match_site_duration"`
		MatchRegistryDuration    *bool    `toml:"match_registry_duration"`
		TitleSimilarity          *float64 `toml:"title_similarity"`
		NameSimilarity           *float64 `toml:"name_similarity"`
	} `toml:"match"`

	Summary struct {
		LegendPlacement string `toml:"legend_placement"`
		LanguageDetect  *bool  `toml:"language_detect"`
	} `toml:"summary"`

	Network struct {
		RequestDelaySeconds *int   `toml:"request_delay_seconds"`
		ProxyURL            string `toml:"proxy_url"`
		RetryMax            *int   `toml:"retry_max"`
		TimeoutSeconds      *int   `toml:"timeout_seconds"`
	} `toml:"network"`

	Registry struct {
		Enabled          *bool  `toml:"enabled"`
		BaseURL          string `toml:"base_url"`
		PlaceholderPhoto string `toml:"placeholder_photo"`
	} `toml:"registry"`

	Sites struct {
		Order                   []string `toml:"order"`
		WayBigBaseURL           string   `toml:"waybig_base_url"`
		AVEntertainmentsBaseURL string   `toml:"aventertainments_base_url"`
	} `toml:"sites"`

	Cache struct {
		Dir      *string `toml:"dir"`
		TTLHours *int    `toml:"ttl_hours"`
	} `toml:"cache"`

	Media struct {
		FFprobe string `toml:"ffprobe"`
	} `toml:"media"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		File   string `toml:"file"`
	} `toml:"log"`
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}

	p := domain.DefaultPrefs()
	setBool(&p.CastToCollection, fc.Collections.Cast)
	setBool(&p.ClearCollectionsOnUpdate, fc.Collections.ClearOnUpdate)
	setBool(&p.CountryToCollection, fc.Collections.Country)
	setBool(&p.DirectorToCollection, fc.Collections.Director)
	setBool(&p.GenreToCollection, fc.Collections.Genre)
	setBool(&p.StudioToCollection, fc.Collections.Studio)
	setBool(&p.TitleToCollection, fc.Collections.Title)
	setBool(&p.MatchAgainstSiteDuration, fc.Match.MatchSiteDuration)
	setBool(&p.MatchAgainstRegistryDuration, fc.Match.MatchRegistryDuration)
	setBool(&p.SummaryLanguageDetect, fc.Summary.LanguageDetect)

	if v := fc.Match.DurationToleranceMinutes; v != nil {
		if *v < 0 {
			return invalid("match.duration_tolerance_minutes 不能为负数：%d", *v)
		}
		p.DurationToleranceMinutes = *v
	}
	if v := fc.Match.TitleSimilarity; v != nil {
		if *v <= 0 || *v > 1 {
			return invalid("match.title_similarity 必须在 (0, 1] 内：%v", *v)
		}
		p.TitleSimilarity = *v
	}
	if v := fc.Match.NameSimilarity; v != nil {
		if *v <= 0 || *v > 1 {
			return invalid("match.name_similarity 必须在 (0, 1] 内：%v", *v)
		}
		p.NameSimilarity = *v
	}

	switch lp := strings.ToLower(strings.TrimSpace(fc.Summary.LegendPlacement)); lp {
	case "":
	case string(domain.LegendPrefix), string(domain.LegendSuffix):
		p.LegendPlacement = domain.LegendPlacement(lp)
	default:
		return invalid("summary.legend_placement 只能是 prefix 或 suffix，实际是 %q", fc.Summary.LegendPlacement)
	}

	if v := fc.Network.RequestDelaySeconds; v != nil {
		if *v < 0 {
			return invalid("network.request_delay_seconds 不能为负数：%d", *v)
		}
		p.InterRequestDelaySeconds = *v
	}
	if ph := strings.TrimSpace(fc.Registry.PlaceholderPhoto); ph != "" {
		p.PlaceholderPhoto = ph
	}

	network := NetworkConfig{
		ProxyURL:     strings.TrimSpace(fc.Network.ProxyURL),
		RequestDelay: time.Duration(p.InterRequestDelaySeconds) * time.Second,
		RetryMax:     DefaultRetryMax,
		Timeout:      DefaultTimeout,
	}
	if network.ProxyURL != "" {
		if _, err := url.Parse(network.ProxyURL); err != nil {
			return invalid("network.proxy_url 无效：%w", err)
		}
	}
	if v := fc.Network.RetryMax; v != nil {
		if *v < 0 {
			return invalid("network.retry_max 不能为负数：%d", *v)
		}
		network.RetryMax = *v
	}
	if v := fc.Network.TimeoutSeconds; v != nil {
		if *v <= 0 {
			return invalid("network.timeout_seconds 必须大于 0：%d", *v)
		}
		network.Timeout = time.Duration(*v) * time.Second
	}

	registry := RegistryConfig{Enabled: true, BaseURL: DefaultRegistryBaseURL}
	setBool(&registry.Enabled, fc.Registry.Enabled)
	if s := strings.TrimSpace(fc.Registry.BaseURL); s != "" {
		if err := validateBaseURL(s); err != nil {
			return invalid("registry.base_url %v", err)
		}
		registry.BaseURL = strings.TrimRight(s, "/")
	}

	sites := SitesConfig{
		Order:                   append([]string(nil), DefaultSiteOrder...),
		WayBigBaseURL:           DefaultWayBigBaseURL,
		AVEntertainmentsBaseURL: DefaultAVEntertainmentsBaseURL,
	}
	if len(fc.Sites.Order) > 0 {
		order, err := normalizeOrder(fc.Sites.Order)
		if err != nil {
			return invalid("sites.order %v", err)
		}
		sites.Order = order
	}
	if s := strings.TrimSpace(fc.Sites.WayBigBaseURL); s != "" {
		if err := validateBaseURL(s); err != nil {
			return invalid("sites.waybig_base_url %v", err)
		}
		sites.WayBigBaseURL = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(fc.Sites.AVEntertainmentsBaseURL); s != "" {
		if err := validateBaseURL(s); err != nil {
			return invalid("sites.aventertainments_base_url %v", err)
		}
		sites.AVEntertainmentsBaseURL = strings.TrimRight(s, "/")
	}

	cache := CacheConfig{Dir: defaultCacheDir(), TTL: DefaultCacheTTL}
	if fc.Cache.Dir != nil {
		cache.Dir = strings.TrimSpace(*fc.Cache.Dir)
		if cache.Dir != "" && cfgPath != "" {
			cache.Dir = absCleanFrom(filepath.Dir(cfgPath), cache.Dir)
		}
	}
	if v := fc.Cache.TTLHours; v != nil {
		if *v < 0 {
			return invalid("cache.ttl_hours 不能为负数：%d", *v)
		}
		cache.TTL = time.Duration(*v) * time.Hour
	}

	logc := LogConfig{Level: "info", Format: "text", File: strings.TrimSpace(fc.Log.File)}
	if s := strings.ToLower(strings.TrimSpace(fc.Log.Level)); s != "" {
		logc.Level = s
	}
	if s := strings.ToLower(strings.TrimSpace(cli.LogLevel)); s != "" {
		logc.Level = s
	}
	switch logc.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level 只能是 debug/info/warn/error，实际是 %q", logc.Level)
	}
	if s := strings.ToLower(strings.TrimSpace(fc.Log.Format)); s != "" {
		logc.Format = s
	}
	if logc.Format != "text" && logc.Format != "json" {
		return invalid("log.format 只能是 text 或 json，实际是 %q", logc.Format)
	}
	if logc.File != "" && cfgPath != "" {
		logc.File = absCleanFrom(filepath.Dir(cfgPath), logc.File)
	}

	media := MediaConfig{FFprobe: DefaultFFprobe}
	if s := strings.TrimSpace(fc.Media.FFprobe); s != "" {
		media.FFprobe = s
	}

	return EffectiveConfig{
		Path:        absPath,
		Apply:       apply,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
		Prefs:       p,
		Network:     network,
		Registry:    registry,
		Sites:       sites,
		Cache:       cache,
		Media:       media,
		Log:         logc,
		File:        cfgPath,
	}, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("无效：%q", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("必须是 http/https：%q", s)
	}
	return nil
}

func normalizeOrder(in []string) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case "waybig", "aventertainments":
		default:
			return nil, fmt.Errorf("包含未知站点 %q", s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

func defaultCacheDir() string {
	d, err := os.UserCacheDir()
	if err != nil || d == "" {
		return ""
	}
	return filepath.Join(d, "filmmatch")
}
