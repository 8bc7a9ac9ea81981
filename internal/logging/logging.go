// Package logging 提供基于 log/slog 的日志构造与常用属性。
//
// 日志只写 stderr 或文件；stdout 保留给 JSON 输出契约。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
)

// Options 对应配置文件 [log] 段。
type Options struct {
	Level  string // debug|info|warn|error，默认 info
	Format string // text|json，默认 text
	// File 非空时额外写入滚动日志文件。
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Stderr 便于测试替换；为 nil 时使用 os.Stderr。
	Stderr io.Writer
}

// New 构造 logger；返回的 io.Closer 负责关闭日志文件（没有文件时为 no-op）。
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	if opts.Stderr != nil {
		w = opts.Stderr
	}
	var closer io.Closer = nopCloser{}
	if file := strings.TrimSpace(opts.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建日志目录失败：%w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    defaultInt(opts.MaxSizeMB, 10),
			MaxBackups: defaultInt(opts.MaxBackups, 3),
			MaxAge:     defaultInt(opts.MaxAgeDays, 28),
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	ho := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, ho)
	case "json":
		h = slog.NewJSONHandler(w, ho)
	default:
		return nil, nil, fmt.Errorf("log.format 只能是 text 或 json，实际是 %q", opts.Format)
	}
	return slog.New(h), closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level 非法：%q", s)
	}
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewNop 返回丢弃一切输出的 logger。
func NewNop() *slog.Logger { return slog.New(noopHandler{}) }

// Or 在 l 为 nil 时返回 no-op logger。
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NewNop()
	}
	return l
}

// NewComponentLogger 附加统一的 component 属性。
func NewComponentLogger(l *slog.Logger, component string) *slog.Logger {
	return Or(l).With(String(FieldComponent, component))
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h noopHandler) WithGroup(string) slog.Handler           { return h }
