package httpx

import (
	"errors"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 20 * time.Second
	defaultRetryMax   = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// Transport 把“UA 池 + 代理 + 请求间隔 + 有界重试”固化为统一策略。
//
// 站点与 registry 只负责“定位页面 + 解析 HTML”，不关心网络策略细节。
type Transport struct {
	Base http.RoundTripper

	ua *uaPool

	// Limiter 控制相邻请求的最小间隔（所有站点与 registry 共享）；nil 表示不限速。
	Limiter *rate.Limiter

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax   int
	RetryDelay time.Duration

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	attempts := uint(1)
	if canRetry && t.RetryMax > 0 {
		attempts += uint(t.RetryMax)
	}
	delay := t.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return retry.DoWithData(
		func() (*http.Response, error) {
			if t.Limiter != nil {
				if err := t.Limiter.Wait(req.Context()); err != nil {
					return nil, retry.Unrecoverable(err)
				}
			}
			r := req.Clone(req.Context())
			if r.Header.Get("User-Agent") == "" && t.ua != nil {
				r.Header.Set("User-Agent", t.ua.random())
			}
			if t.DisableKeepAlives {
				r.Close = true
			}

			resp, err := t.Base.RoundTrip(r)
			if err != nil {
				return nil, err
			}
			if canRetry && retryableStatus(resp.StatusCode) {
				_ = resp.Body.Close()
				return nil, &StatusError{URL: r.URL.String(), StatusCode: resp.StatusCode}
			}
			return resp, nil
		},
		retry.Attempts(attempts),
		retry.Context(req.Context()),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ClientOptions 对应配置文件 [network] 段。
type ClientOptions struct {
	// ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）。
	ProxyURL string
	// RequestDelay 是相邻请求的最小间隔（尊重站点限流）。
	RequestDelay time.Duration
	RetryMax     int
	Timeout      time.Duration
}

// NewClient 构造站点与 registry 共用的 HTTP client。
func NewClient(opts ClientOptions) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	retryMax := opts.RetryMax
	if retryMax < 0 {
		retryMax = defaultRetryMax
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tr := &Transport{
		Base:              base,
		ua:                globalUA,
		Limiter:           NewLimiter(opts.RequestDelay),
		RetryMax:          retryMax,
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

// NewLimiter 返回“每 delay 放行一次”的限速器；delay<=0 时返回 nil（不限速）。
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:129.0) Gecko/20100101 Firefox/129.0",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}
