package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// FileName 是配置文件的固定文件名。
const FileName = "filmmatch.toml"

const (
	// ErrCodeNotFound 表示 run 无 path 参数运行但 cwd 下没有 filmmatch.toml。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示 run 无 path 参数运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	DefaultRegistryBaseURL         = "https://www.iafd.com"
	DefaultWayBigBaseURL           = "https://www.waybig.com"
	DefaultAVEntertainmentsBaseURL = "https://www.aventertainments.com"

	DefaultRetryMax = 2
	DefaultTimeout  = 20 * time.Second
	DefaultCacheTTL = 168 * time.Hour
)

// DefaultFFprobe 是读取视频时长使用的 ffprobe 可执行文件。
const DefaultFFprobe = "ffprobe"

// DefaultSiteOrder 是站点的默认搜索顺序。
var DefaultSiteOrder = []string{"waybig", "aventertainments"}

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string
	// RequirePath 为 true 时（run 子命令），未给 path 则必须从 <cwd>/filmmatch.toml 读到 path。
	RequirePath bool

	Apply    bool
	ApplySet bool

	// LogLevel 非空时覆盖 [log].level。
	LogLevel string
}

type NetworkConfig struct {
	ProxyURL     string
	RequestDelay time.Duration
	RetryMax     int
	Timeout      time.Duration
}

type RegistryConfig struct {
	Enabled bool
	BaseURL string
}

type SitesConfig struct {
	Order                   []string
	WayBigBaseURL           string
	AVEntertainmentsBaseURL string
}

type CacheConfig struct {
	// Dir 为空表示不缓存页面。
	Dir string
	TTL time.Duration
}

// MediaConfig 用于批量运行时读取视频时长（只在启用时长比较时调用）。
type MediaConfig struct {
	FFprobe string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path        string
	Apply       bool
	ExcludeDirs []string

	Prefs    domain.Prefs
	Network  NetworkConfig
	Registry RegistryConfig
	Sites    SitesConfig
	Cache    CacheConfig
	Media    MediaConfig
	Log      LogConfig

	// File 是实际读取到的配置文件路径；未读取时为空。
	File string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/filmmatch.toml（可选）
// 2) CLI 未提供 path：读取 <cwd>/filmmatch.toml；RequirePath 时文件与其中的 path 都是必选
//
// 覆盖优先级（固定）：CLI > 配置文件 > 内置默认。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选。若 path 指向文件（search 单个视频），则在其所在目录查找。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		dir := absPath
		if fi, err := os.Stat(absPath); err == nil && !fi.IsDir() {
			dir = filepath.Dir(absPath)
		}
		cfgPath := filepath.Join(dir, FileName)
		fc, exists, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			cfgPath = ""
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		if cli.RequirePath {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		return merge(cwdAbs, cli, FileConfig{}, "")
	}
	if strings.TrimSpace(fc.Path) == "" {
		if cli.RequirePath {
			return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
		}
		return merge(cwdAbs, cli, fc, cfgPath)
	}
	return merge(absCleanFrom(cwdAbs, fc.Path), cli, fc, cfgPath)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
