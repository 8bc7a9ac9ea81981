package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch 表示所有候选都被匹配器拒绝（文件保持未匹配）。
	ErrNoMatch = errors.New("没有匹配的候选")
	// ErrEnrichmentUnavailable 表示 registry 查询无结果或失败；调用方降级为仅站点数据。
	ErrEnrichmentUnavailable = errors.New("registry 增强不可用")
)

// ParseError 表示文件名不符合命名约定（该文件的 search 直接终止）。
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if strings.TrimSpace(e.Reason) == "" {
		return fmt.Sprintf("文件名不符合命名约定：%q", e.Path)
	}
	return fmt.Sprintf("文件名不符合命名约定：%q：%s", e.Path, e.Reason)
}

// FetchError 是站点或 registry 的抓取/解析失败（可恢复：跳过候选或放弃增强）。
type FetchError struct {
	Source string // 站点名或 "iafd"
	Stage  string // "fetch" / "parse"
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source=%s stage=%s url=%s: %v", e.Source, e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

func IsFetchError(err error) bool {
	var e *FetchError
	return errors.As(err, &e)
}
