package httpx

import (
	"fmt"
	"strings"
)

// StatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type StatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// BlockedError 表示请求被引导到了“验证/拦截”页面（通常需要浏览器执行 JS）。
// 不尝试绕过：视为抓取失败，由上层跳过该候选或提示配置代理。
type BlockedError struct {
	URL    string
	Reason string
}

func (e *BlockedError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "blocked"
	}
	return "blocked: " + strings.TrimSpace(e.Reason)
}
