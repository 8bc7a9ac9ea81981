// Package match 实现期望记录与站点候选之间的字段比较。
//
// 每个匹配器都是纯函数，返回 Result 而不是 error：
// Matched 表示接受，Rejected 携带原因，Errored 携带原因（通常是配置非法）。
package match

import (
	"fmt"
	"time"
)

type Outcome int

const (
	Matched Outcome = iota + 1
	Rejected
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Rejected:
		return "rejected"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// Result 是单个字段的比较结果。
type Result struct {
	Field   string
	Outcome Outcome
	// Score 是归一化得分 [0,1]；跳过的比较记为 1。
	Score  float64
	Reason string
	Err    error

	// Date 只由日期匹配器填写：解析出的发行日期（零值表示站点没有可用日期）。
	Date time.Time
}

func (r Result) Accepted() bool { return r.Outcome == Matched }

func (r Result) String() string {
	switch r.Outcome {
	case Matched:
		return fmt.Sprintf("%s matched (%.2f)", r.Field, r.Score)
	case Errored:
		return fmt.Sprintf("%s error: %v", r.Field, r.Err)
	default:
		return fmt.Sprintf("%s rejected: %s", r.Field, r.Reason)
	}
}

func accept(field string, score float64, reason string) Result {
	return Result{Field: field, Outcome: Matched, Score: score, Reason: reason}
}

func reject(field string, score float64, format string, args ...any) Result {
	return Result{Field: field, Outcome: Rejected, Score: score, Reason: fmt.Sprintf(format, args...)}
}

func fail(field string, err error) Result {
	return Result{Field: field, Outcome: Errored, Reason: err.Error(), Err: err}
}
