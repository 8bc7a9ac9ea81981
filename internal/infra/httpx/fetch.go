package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/infra/cache"
	"github.com/John-Robertt/filmmatch/internal/logging"
)

// Fetcher 读取页面：先查缓存，再走网络，成功后写回缓存。
type Fetcher struct {
	Client *http.Client
	// Cache 可为 nil（不缓存）。
	Cache  *cache.Store
	Logger *slog.Logger
}

// Get 抓取 rawURL；source 是缓存分区名（站点名 / iafd）。
func (f *Fetcher) Get(ctx context.Context, source, rawURL string) ([]byte, error) {
	log := logging.Or(f.Logger)
	if f.Cache != nil {
		b, ok, err := f.Cache.ReadPage(source, rawURL)
		if err != nil {
			log.Warn("读取页面缓存失败", logging.String("url", rawURL), logging.Error(err))
		} else if ok {
			log.Debug("命中页面缓存", logging.String("source", source), logging.String("url", rawURL))
			return b, nil
		}
	}

	c := f.Client
	if c == nil {
		c = http.DefaultClient
	}
	b, err := fetchURL(ctx, c, rawURL)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil && !f.Cache.ReadOnly {
		if err := f.Cache.WritePage(source, rawURL, b); err != nil {
			log.Warn("写入页面缓存失败", logging.String("url", rawURL), logging.Error(err))
		}
	}
	return b, nil
}

var blockedMarkers = [][]byte{
	[]byte("cf-browser-verification"),
	[]byte("challenge-platform"),
	[]byte("<title>Just a moment...</title>"),
	[]byte("<title>Attention Required! | Cloudflare</title>"),
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	for _, m := range blockedMarkers {
		if bytes.Contains(b, m) {
			return nil, &BlockedError{URL: u, Reason: "challenge page"}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Location: strings.TrimSpace(resp.Header.Get("Location"))}
	}
	if len(b) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}

// ResolveURL 把页面内的相对链接解析为绝对 URL。
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}
