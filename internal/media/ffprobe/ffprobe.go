// Package ffprobe 通过 ffprobe 读取视频容器时长。
//
// 文件名本身不带时长；批量运行启用时长比较时由这里补上。
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result 是 ffprobe -show_format 的 JSON 输出（只保留用得到的字段）。
type Result struct {
	Format Format `json:"format"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect 执行 ffprobe 并解析 JSON 输出。
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe：路径为空")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return Result{}, fmt.Errorf("ffprobe 执行失败：%w: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe 执行失败：%w", err)
	}
	return Parse(output)
}

// Parse 解析 ffprobe 的 JSON 输出。
func Parse(output []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(output, &r); err != nil {
		return Result{}, fmt.Errorf("ffprobe 输出解析失败：%w", err)
	}
	return r, nil
}

// DurationSeconds 返回容器时长（秒）；缺失或无法解析时为 0。
func (r Result) DurationSeconds() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// DurationMinutes 返回四舍五入到分钟的时长。
func (r Result) DurationMinutes() int {
	return int(math.Round(r.DurationSeconds() / 60))
}

// Prober 按文件读取时长（分钟），供批量运行使用。
type Prober struct {
	Binary string
}

func (p Prober) DurationMinutes(ctx context.Context, path string) (int, error) {
	r, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, err
	}
	if r.DurationSeconds() == 0 {
		return 0, fmt.Errorf("ffprobe 没有返回时长：%s", path)
	}
	return r.DurationMinutes(), nil
}
